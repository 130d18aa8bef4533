package services

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"classroom-live-backend/internal/models"
	"classroom-live-backend/internal/ws"

	"gorm.io/gorm"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrNoActivePoll  = errors.New("no active poll found")
	ErrPollExpired   = errors.New("poll is no longer active")
	ErrDuplicateVote = errors.New("you have already voted on this poll")
	ErrInvalidOption = errors.New("invalid option selected")
)

type OptionResult struct {
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// PollSnapshot is the role-appropriate view of a live poll pushed to a
// newly connected client.
type PollSnapshot struct {
	ID            uint           `json:"id"`
	Question      string         `json:"question"`
	Options       []OptionResult `json:"options"`
	Duration      int            `json:"duration"`
	StartTime     time.Time      `json:"startTime"`
	TimeRemaining int            `json:"timeRemaining"`
	HasVoted      bool           `json:"hasVoted"`
	TotalVotes    int            `json:"totalVotes"`
	Results       []OptionResult `json:"results,omitempty"`
}

// PollService drives the poll state machine. Vote recording and
// end-actives-then-create each run inside a per-session critical section so
// the single-active-poll and one-vote-per-user invariants hold under
// concurrent requests.
type PollService struct {
	db  *gorm.DB
	hub *ws.Hub

	locksMu      sync.Mutex
	sessionLocks map[uint]*sync.Mutex

	timersMu sync.Mutex
	timers   map[uint]*time.Timer
}

func NewPollService(db *gorm.DB, hub *ws.Hub) *PollService {
	return &PollService{
		db:           db,
		hub:          hub,
		sessionLocks: make(map[uint]*sync.Mutex),
		timers:       make(map[uint]*time.Timer),
	}
}

func (s *PollService) sessionLock(sessionID uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if s.sessionLocks[sessionID] == nil {
		s.sessionLocks[sessionID] = &sync.Mutex{}
	}
	return s.sessionLocks[sessionID]
}

// CreatePoll ends every poll still active in the creator's session, persists
// the new poll and schedules its expiry. Validation of question/options/
// duration happens at the boundary; role and session binding are enforced
// here.
func (s *PollService) CreatePoll(creator *models.User, question string, options []string, correctAnswer string, duration int) (*models.Poll, error) {
	if creator.Role != models.RoleFacilitator {
		return nil, errors.New("only facilitators can create polls")
	}
	if creator.SessionID == nil {
		return nil, errors.New("you are not in a session")
	}
	sessionID := *creator.SessionID

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.endActivePollsLocked(sessionID); err != nil {
		return nil, err
	}

	poll := models.Poll{
		Question:      question,
		CorrectAnswer: correctAnswer,
		CreatedBy:     creator.ID,
		CreatedByName: creator.Name,
		SessionID:     sessionID,
		Duration:      duration,
		Status:        models.PollStatusActive,
		StartTime:     time.Now(),
		IsLive:        true,
	}
	for _, text := range options {
		poll.Options = append(poll.Options, models.PollOption{Text: text})
	}
	if err := s.db.Create(&poll).Error; err != nil {
		log.Printf("poll: create in session %d: %v", sessionID, err)
		return nil, errors.New("failed to create poll")
	}

	s.scheduleExpiry(&poll)
	log.Printf("poll: %d created in session %d (%ds)", poll.ID, sessionID, poll.Duration)
	return &poll, nil
}

// endActivePollsLocked completes every active poll in the session and stops
// their timers. Caller holds the session lock.
func (s *PollService) endActivePollsLocked(sessionID uint) error {
	var stale []models.Poll
	s.db.Where("session_id = ? AND status = ?", sessionID, models.PollStatusActive).Find(&stale)

	if len(stale) == 0 {
		return nil
	}

	now := time.Now()
	err := s.db.Model(&models.Poll{}).
		Where("session_id = ? AND status = ?", sessionID, models.PollStatusActive).
		Updates(map[string]interface{}{
			"status":   models.PollStatusCompleted,
			"end_time": now,
			"is_live":  false,
		}).Error
	if err != nil {
		log.Printf("poll: end active polls in session %d: %v", sessionID, err)
		return errors.New("failed to end active polls")
	}

	for _, p := range stale {
		s.cancelExpiry(p.ID)
	}
	return nil
}

func (s *PollService) scheduleExpiry(poll *models.Poll) {
	pollID, sessionID := poll.ID, poll.SessionID
	timer := time.AfterFunc(time.Duration(poll.Duration)*time.Second, func() {
		s.expirePoll(pollID, sessionID)
	})

	s.timersMu.Lock()
	s.timers[pollID] = timer
	s.timersMu.Unlock()
}

func (s *PollService) cancelExpiry(pollID uint) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[pollID]; ok {
		timer.Stop()
		delete(s.timers, pollID)
	}
}

// expirePoll fires when a poll's duration elapses. A poll superseded or
// ended early is no longer active, which makes a late timer a no-op.
func (s *PollService) expirePoll(pollID, sessionID uint) {
	s.timersMu.Lock()
	delete(s.timers, pollID)
	s.timersMu.Unlock()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	poll, err := s.loadPoll(pollID)
	if err != nil || poll.Status != models.PollStatusActive {
		lock.Unlock()
		return
	}
	if err := s.completePollLocked(poll); err != nil {
		lock.Unlock()
		return
	}
	lock.Unlock()

	log.Printf("poll: %d expired in session %d", pollID, sessionID)
	s.hub.Broadcast(ws.SessionRoom(sessionID), ws.Event{
		Type: ws.EventPollEnded,
		Data: map[string]interface{}{
			"id":         poll.ID,
			"results":    s.Results(poll),
			"totalVotes": poll.TotalVotes,
		},
	})
}

func (s *PollService) completePollLocked(poll *models.Poll) error {
	now := time.Now()
	poll.Status = models.PollStatusCompleted
	poll.EndTime = &now
	poll.IsLive = false
	err := s.db.Model(&models.Poll{}).Where("id = ?", poll.ID).Updates(map[string]interface{}{
		"status":   models.PollStatusCompleted,
		"end_time": now,
		"is_live":  false,
	}).Error
	if err != nil {
		log.Printf("poll: complete %d: %v", poll.ID, err)
		return errors.New("failed to end poll")
	}
	return nil
}

func (s *PollService) loadPoll(pollID uint) (*models.Poll, error) {
	var poll models.Poll
	if err := s.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&poll, pollID).Error; err != nil {
		return nil, ErrPollNotFound
	}
	return &poll, nil
}

// RecordVote applies one ballot atomically: the voter record, the option
// count and the poll total move together or not at all.
func (s *PollService) RecordVote(voter *models.User, pollID uint, selectedOption string) (*models.Poll, error) {
	if voter.Role != models.RoleParticipant {
		return nil, errors.New("only participants can vote")
	}

	var probe models.Poll
	if err := s.db.First(&probe, pollID).Error; err != nil {
		return nil, ErrPollNotFound
	}

	lock := s.sessionLock(probe.SessionID)
	lock.Lock()
	defer lock.Unlock()

	poll, err := s.loadPoll(pollID)
	if err != nil {
		return nil, err
	}
	if poll.Status != models.PollStatusActive {
		return nil, ErrPollExpired
	}
	if poll.IsExpired() {
		// Lazy close: a lost timer must not keep a stale poll votable.
		s.completePollLocked(poll)
		s.cancelExpiry(poll.ID)
		return nil, ErrPollExpired
	}

	if s.HasVoted(pollID, voter.ID) {
		return nil, ErrDuplicateVote
	}

	var option *models.PollOption
	for i := range poll.Options {
		if poll.Options[i].Text == selectedOption {
			option = &poll.Options[i]
			break
		}
	}
	if option == nil {
		return nil, ErrInvalidOption
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		vote := models.PollVote{
			PollID:   poll.ID,
			OptionID: option.ID,
			UserID:   voter.ID,
			UserName: voter.Name,
			VotedAt:  time.Now(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PollOption{}).Where("id = ?", option.ID).
			Update("votes", gorm.Expr("votes + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Poll{}).Where("id = ?", poll.ID).
			Update("total_votes", gorm.Expr("total_votes + 1")).Error
	})
	if err != nil {
		log.Printf("poll: record vote on %d by user %d: %v", pollID, voter.ID, err)
		return nil, errors.New("failed to record vote")
	}

	return s.loadPoll(pollID)
}

// HasVoted reports whether the user's ballot already sits in any option of
// the poll.
func (s *PollService) HasVoted(pollID, userID uint) bool {
	var count int64
	s.db.Model(&models.PollVote{}).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		Count(&count)
	return count > 0
}

// EndActivePoll terminates the session's active poll on an explicit
// facilitator action.
func (s *PollService) EndActivePoll(actor *models.User) (*models.Poll, error) {
	if actor.Role != models.RoleFacilitator {
		return nil, errors.New("only facilitators can end polls")
	}
	if actor.SessionID == nil {
		return nil, errors.New("you are not in a session")
	}
	sessionID := *actor.SessionID

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var poll models.Poll
	if err := s.db.Where("session_id = ? AND status = ?", sessionID, models.PollStatusActive).
		Order("start_time DESC").
		First(&poll).Error; err != nil {
		return nil, ErrNoActivePoll
	}

	full, err := s.loadPoll(poll.ID)
	if err != nil {
		return nil, err
	}
	if err := s.completePollLocked(full); err != nil {
		return nil, err
	}
	s.cancelExpiry(full.ID)
	return full, nil
}

// CurrentPoll returns the session's live poll, lazily completing one whose
// window has already passed (a restart loses pending timers).
func (s *PollService) CurrentPoll(sessionID uint) (*models.Poll, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var poll models.Poll
	if err := s.db.Where("session_id = ? AND status = ? AND is_live = ?",
		sessionID, models.PollStatusActive, true).
		Order("start_time DESC").
		First(&poll).Error; err != nil {
		return nil, ErrNoActivePoll
	}

	full, err := s.loadPoll(poll.ID)
	if err != nil {
		return nil, err
	}
	if full.IsExpired() {
		s.completePollLocked(full)
		s.cancelExpiry(full.ID)
		return nil, ErrNoActivePoll
	}
	return full, nil
}

func (s *PollService) History(sessionID uint) ([]models.Poll, error) {
	var polls []models.Poll
	if err := s.db.Where("session_id = ? AND status != ?", sessionID, models.PollStatusActive).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("start_time DESC").
		Find(&polls).Error; err != nil {
		log.Printf("poll: history for session %d: %v", sessionID, err)
		return nil, errors.New("failed to load poll history")
	}
	return polls, nil
}

// Results computes per-option percentages. Percentages round independently,
// so their sum may not be exactly 100.
func (s *PollService) Results(poll *models.Poll) []OptionResult {
	results := make([]OptionResult, len(poll.Options))
	for i, opt := range poll.Options {
		pct := 0
		if poll.TotalVotes > 0 {
			pct = int(math.Round(float64(opt.Votes) / float64(poll.TotalVotes) * 100))
		}
		results[i] = OptionResult{Text: opt.Text, Votes: opt.Votes, Percentage: pct}
	}
	return results
}

// Snapshot builds the view of a live poll for one user. Facilitators see
// live counts; participants see zeroed counts until they have voted, after
// which they also get full results.
func (s *PollService) Snapshot(poll *models.Poll, user *models.User) PollSnapshot {
	isFacilitator := user.Role == models.RoleFacilitator
	hasVoted := false
	if !isFacilitator {
		hasVoted = s.HasVoted(poll.ID, user.ID)
	}

	remaining := poll.Duration - int(time.Since(poll.StartTime).Seconds())
	if remaining < 0 {
		remaining = 0
	}

	snap := PollSnapshot{
		ID:            poll.ID,
		Question:      poll.Question,
		Duration:      poll.Duration,
		StartTime:     poll.StartTime,
		TimeRemaining: remaining,
		HasVoted:      hasVoted,
	}

	for _, opt := range poll.Options {
		votes := opt.Votes
		if !isFacilitator {
			votes = 0
		}
		snap.Options = append(snap.Options, OptionResult{Text: opt.Text, Votes: votes})
	}

	if isFacilitator {
		snap.TotalVotes = poll.TotalVotes
	}
	if hasVoted {
		snap.Results = s.Results(poll)
		snap.TotalVotes = poll.TotalVotes
	}
	return snap
}
