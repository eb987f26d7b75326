// Package memstore keeps accounts, experts, reports and notifications in
// process memory. It backs `serve --in-memory` and the handler tests, and
// mirrors the transactional guarantees of the Postgres repositories.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"ecoreport/internal/store"
	"ecoreport/internal/utils"
	"ecoreport/pkg/types"
)

type Store struct {
	mu sync.RWMutex

	accounts      map[string]*types.Account
	emails        map[string]string
	experts       map[string]*types.ExpertProfile
	reports       []*types.Report
	notifications []*types.Notification

	// FailNotifications, when set, makes every notification batch fail with
	// this error after the report itself has been written.
	FailNotifications error
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*types.Account),
		emails:   make(map[string]string),
		experts:  make(map[string]*types.ExpertProfile),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Account(ctx context.Context, accountID string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) CreateAccount(ctx context.Context, account *types.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(account.Email)
	if _, taken := s.emails[email]; taken {
		return types.ErrEmailTaken
	}

	now := time.Now()
	account.ID = utils.NanoID()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Skills == nil {
		account.Skills = []string{}
	}
	if account.Interests == nil {
		account.Interests = []string{}
	}

	s.accounts[account.ID] = cloneAccount(account)
	s.emails[email] = account.ID
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, accountID string, update *types.ProfileUpdate) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, types.ErrAccountNotFound
	}

	if update.Empty() {
		return cloneAccount(account), nil
	}

	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Bio != nil {
		account.Bio = utils.StringPtr(*update.Bio)
	}
	if update.Location != nil {
		account.Location = utils.StringPtr(*update.Location)
	}
	if update.Skills != nil {
		account.Skills = slices.Clone(update.Skills)
	}
	if update.Interests != nil {
		account.Interests = slices.Clone(update.Interests)
	}
	if update.Expertise != nil {
		account.Expertise = utils.StringPtr(*update.Expertise)
	}
	if update.Image != nil {
		account.Image = utils.StringPtr(*update.Image)
	}
	if update.SocialLinks != nil {
		links := *update.SocialLinks
		account.SocialLinks = &links
	}
	account.UpdatedAt = time.Now()

	return cloneAccount(account), nil
}

func (s *Store) CreateExpert(ctx context.Context, expert *types.ExpertProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[expert.AccountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	if _, exists := s.experts[expert.AccountID]; exists {
		return types.ErrExpertExists
	}

	expert.CreatedAt = time.Now()
	if expert.Credentials == nil {
		expert.Credentials = []string{}
	}

	stored := *expert
	stored.Specialties = slices.Clone(expert.Specialties)
	stored.Credentials = slices.Clone(expert.Credentials)
	s.experts[expert.AccountID] = &stored

	if account.Role != types.RoleAdmin {
		account.Role = types.RoleExpert
		account.UpdatedAt = expert.CreatedAt
	}

	return nil
}

// CreateReport holds the write lock for the whole command so readers never
// observe a report without its points or a partial notification batch.
func (s *Store) CreateReport(ctx context.Context, report *types.Report, points int) (*types.ReportCreation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.accounts[report.AccountID]
	if !ok {
		return nil, types.ErrAccountNotFound
	}

	now := time.Now()
	report.ID = utils.NanoID()
	report.Status = types.ReportStatusPending
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Images == nil {
		report.Images = []string{}
	}

	stored := *report
	stored.Images = slices.Clone(report.Images)
	s.reports = append(s.reports, &stored)

	owner.ImpactPoints += points
	owner.UpdatedAt = now

	creation := &types.ReportCreation{Report: report}
	if s.FailNotifications != nil {
		creation.FanOutErr = s.FailNotifications
		return creation, nil
	}

	recipients := s.matchingExperts(report)
	if len(recipients) == 0 {
		return creation, nil
	}

	creation.Notifications = store.BuildNotifications(report, recipients, now)
	for _, n := range creation.Notifications {
		copied := *n
		s.notifications = append(s.notifications, &copied)
	}

	return creation, nil
}

func (s *Store) matchingExperts(report *types.Report) []string {
	type match struct {
		id      string
		created time.Time
	}

	matches := make([]match, 0)
	for id, expert := range s.experts {
		account := s.accounts[id]
		if account == nil || account.Role != types.RoleExpert || id == report.AccountID {
			continue
		}
		if slices.Contains(expert.Specialties, report.Category) {
			matches = append(matches, match{id: id, created: account.CreatedAt})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].created.Equal(matches[j].created) {
			return matches[i].id < matches[j].id
		}
		return matches[i].created.Before(matches[j].created)
	})

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.id)
	}
	return ids
}

func (s *Store) Reports(ctx context.Context, filter types.ReportFilter) ([]*types.Report, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := strings.ToLower(strings.TrimSpace(filter.Location))

	matched := make([]*types.Report, 0)
	for i := len(s.reports) - 1; i >= 0; i-- {
		report := s.reports[i]
		if filter.Category != "" && report.Category != filter.Category {
			continue
		}
		if filter.Urgency != "" && report.Urgency != filter.Urgency {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(report.Location), location) {
			continue
		}
		matched = append(matched, report)
	}

	total := len(matched)
	start := min(filter.Offset(), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	page := make([]*types.Report, 0, end-start)
	for _, report := range matched[start:end] {
		copied := *report
		copied.Images = slices.Clone(report.Images)
		page = append(page, &copied)
	}

	return page, total, nil
}

// Notifications returns every stored notification for reportID.
func (s *Store) Notifications(reportID string) []*types.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Notification, 0)
	for _, n := range s.notifications {
		if n.ReportID == reportID {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out
}

// AccountCount returns the number of stored accounts.
func (s *Store) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func cloneAccount(a *types.Account) *types.Account {
	out := *a
	out.Skills = slices.Clone(a.Skills)
	out.Interests = slices.Clone(a.Interests)
	if a.SocialLinks != nil {
		links := *a.SocialLinks
		out.SocialLinks = &links
	}
	return &out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
