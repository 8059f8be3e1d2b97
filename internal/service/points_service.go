package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
)

// DateLayout is the calendar-day format used for lastActiveDate ("Mon Jan 02 2006")
const DateLayout = "Mon Jan 02 2006"

// PointsPerLevel is the number of points between levels
const PointsPerLevel = 1000

// MaxAwardAmount caps a single award; it also fits the ledger's Int32 column
const MaxAwardAmount = 1_000_000

// actionBadges maps an action to the badge earned the first time it is performed
var actionBadges = map[string]string{
	"wallet_create":    "Wallet Creator",
	"wallet_import":    "Wallet Importer",
	"transaction_send": "First Transaction",
	"dapp_visit":       "DApp Explorer",
	"bookmark_add":     "Bookmarker",
}

type badgeThreshold struct {
	Points int
	Name   string
}

// thresholdBadges must stay in ascending order of Points
var thresholdBadges = []badgeThreshold{
	{Points: 10, Name: "First Steps"},
	{Points: 100, Name: "Explorer"},
	{Points: 500, Name: "Trader"},
	{Points: 1000, Name: "Whale"},
	{Points: 5000, Name: "Legend"},
}

// Level derives the level from a point total
func Level(points int) int {
	return points/PointsPerLevel + 1
}

// ActionBadge returns the badge for an action, if any
func ActionBadge(action string) (string, bool) {
	badge, ok := actionBadges[action]
	return badge, ok
}

// ActivityRecorder receives every successful award. Failures are logged only.
type ActivityRecorder interface {
	RecordAward(ctx context.Context, event models.AwardEvent) error
}

// ActivityTotals is implemented by recorders that can sum what they recorded
type ActivityTotals interface {
	TotalsByAction(ctx context.Context) (map[string]int64, error)
}

// PointsAwarder is the narrow view other services use to grant points
type PointsAwarder interface {
	AddPoints(ctx context.Context, amount int, action string) (*models.AwardResult, error)
}

// PointsService is the gamification engine: points, streak and badges
type PointsService struct {
	store    storage.KeyValueStore
	recorder ActivityRecorder
	logger   *logging.Logger
	now      func() time.Time

	mu             sync.Mutex
	points         int
	streak         int
	lastActiveDate string
	badges         []string
	actionHistory  []string
}

// PointsOption customizes a PointsService
type PointsOption func(*PointsService)

// WithClock replaces the wall clock used for streak dates
func WithClock(now func() time.Time) PointsOption {
	return func(s *PointsService) { s.now = now }
}

// WithActivityRecorder sends every award to recorder
func WithActivityRecorder(recorder ActivityRecorder) PointsOption {
	return func(s *PointsService) { s.recorder = recorder }
}

// NewPointsService creates an engine with zero points
func NewPointsService(store storage.KeyValueStore, logger *logging.Logger, opts ...PointsOption) *PointsService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &PointsService{
		store:         store,
		logger:        logger.WithComponent("points"),
		now:           time.Now,
		badges:        []string{},
		actionHistory: []string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads persisted state, tolerating corrupt values, then checks the streak
func (s *PointsService) Load(ctx context.Context) models.PointsProfile {
	s.mu.Lock()
	s.points = s.loadInt(ctx, storage.KeyPoints)
	s.streak = s.loadInt(ctx, storage.KeyStreak)
	s.badges = s.loadList(ctx, storage.KeyBadges)
	s.actionHistory = s.loadList(ctx, storage.KeyActionHistory)
	s.lastActiveDate = ""
	if raw, ok := s.store.Get(ctx, storage.KeyLastActiveDate); ok {
		s.lastActiveDate = raw
	}
	s.mu.Unlock()

	return s.CheckStreak(ctx)
}

func (s *PointsService) loadInt(ctx context.Context, key string) int {
	raw, ok := s.store.Get(ctx, key)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("Ignoring corrupt stored number")
		return 0
	}
	if v < 0 {
		s.logger.WithField("key", key).WithField("value", v).Warn("Ignoring negative stored number")
		return 0
	}
	return v
}

func (s *PointsService) loadList(ctx context.Context, key string) []string {
	raw, ok := s.store.Get(ctx, key)
	if !ok {
		return []string{}
	}
	var list []string
	if _, err := storage.DecodeVersioned(raw, &list); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("Ignoring corrupt stored list")
		return []string{}
	}
	return dedupe(list)
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AddPoints awards amount for action and grants any badges now earned.
// The streak is not touched.
func (s *PointsService) AddPoints(ctx context.Context, amount int, action string) (*models.AwardResult, error) {
	if amount <= 0 {
		return nil, errors.NewValidationError("amount", "amount must be positive")
	}
	if amount > MaxAwardAmount {
		return nil, errors.NewValidationError("amount", "amount exceeds the per-award limit")
	}
	if strings.TrimSpace(action) == "" {
		return nil, errors.NewValidationError("action", "action is required")
	}

	s.mu.Lock()
	if s.points > math.MaxInt-amount {
		s.mu.Unlock()
		return nil, errors.NewValidationError("amount", "points total would overflow")
	}
	s.points += amount

	var newBadges []string
	if badge, ok := actionBadges[action]; ok && !contains(s.badges, badge) {
		s.badges = append(s.badges, badge)
		newBadges = append(newBadges, badge)
	}
	for _, threshold := range thresholdBadges {
		if s.points >= threshold.Points && !contains(s.badges, threshold.Name) {
			s.badges = append(s.badges, threshold.Name)
			newBadges = append(newBadges, threshold.Name)
		}
	}
	if !contains(s.actionHistory, action) {
		s.actionHistory = append(s.actionHistory, action)
	}
	s.lastActiveDate = s.today()

	s.persistLocked(ctx)
	profile := s.profileLocked()
	s.mu.Unlock()

	if newBadges == nil {
		newBadges = []string{}
	}
	result := &models.AwardResult{Profile: profile, Awarded: amount, NewBadges: newBadges}

	if s.recorder != nil {
		event := models.AwardEvent{
			Action:      action,
			Amount:      amount,
			TotalPoints: profile.Points,
			NewBadges:   newBadges,
			OccurredAt:  s.now().UTC(),
		}
		if err := s.recorder.RecordAward(ctx, event); err != nil {
			s.logger.WithField("action", action).WithError(err).Warn("Failed to record award in activity ledger")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"action":    action,
		"amount":    amount,
		"points":    profile.Points,
		"newBadges": len(newBadges),
	}).Debug("Points awarded")

	return result, nil
}

// CheckStreak extends the streak when the last active day was yesterday,
// leaves it alone when it was today, and restarts it at 1 otherwise.
func (s *PointsService) CheckStreak(ctx context.Context) models.PointsProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := now.Format(DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(DateLayout)

	switch s.lastActiveDate {
	case today:
		return s.profileLocked()
	case yesterday:
		s.streak++
	default:
		s.streak = 1
	}
	s.lastActiveDate = today

	s.store.Set(ctx, storage.KeyStreak, strconv.Itoa(s.streak))
	s.store.Set(ctx, storage.KeyLastActiveDate, today)
	return s.profileLocked()
}

// Profile returns a snapshot with the derived level
func (s *PointsService) Profile() models.PointsProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked()
}

// Reset returns the engine to zero in memory only
func (s *PointsService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = 0
	s.streak = 0
	s.lastActiveDate = ""
	s.badges = []string{}
	s.actionHistory = []string{}
}

func (s *PointsService) today() string {
	return s.now().Format(DateLayout)
}

func (s *PointsService) persistLocked(ctx context.Context) {
	s.store.Set(ctx, storage.KeyPoints, strconv.Itoa(s.points))
	s.store.Set(ctx, storage.KeyStreak, strconv.Itoa(s.streak))
	s.setList(ctx, storage.KeyBadges, s.badges)
	s.store.Set(ctx, storage.KeyLastActiveDate, s.lastActiveDate)
	s.setList(ctx, storage.KeyActionHistory, s.actionHistory)
}

func (s *PointsService) setList(ctx context.Context, key string, list []string) {
	raw, err := storage.EncodeVersioned(list)
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Error("Failed to encode list")
		return
	}
	s.store.Set(ctx, key, raw)
}

func (s *PointsService) profileLocked() models.PointsProfile {
	return models.PointsProfile{
		Points:         s.points,
		Level:          Level(s.points),
		Streak:         s.streak,
		LastActiveDate: s.lastActiveDate,
		Badges:         append([]string{}, s.badges...),
		ActionHistory:  append([]string{}, s.actionHistory...),
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
