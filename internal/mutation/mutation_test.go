package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"ecoreport/internal/auth"
	"ecoreport/internal/storage"
	"ecoreport/internal/store/memstore"
	"ecoreport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	exec   *Executor
	store  *memstore.Store
	tokens *auth.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens, err := auth.NewIssuer([]byte(testSecret), "test", "ecoreport-test")
	require.NoError(t, err)

	mem := memstore.New()
	uploads := &storage.LocalUploads{BaseURL: "http://uploads.test"}

	return &fixture{
		exec:   New(logger, mem, mem, mem, uploads, tokens, 10),
		store:  mem,
		tokens: tokens,
	}
}

func signupBase(email string, role types.Role) SignupBase {
	return SignupBase{
		UserType:        role,
		Name:            "Ana Silva",
		Email:           email,
		Password:        "Passw0rdOk",
		ConfirmPassword: "Passw0rdOk",
		AgreeTerms:      true,
	}
}

// signupAccount creates a USER account and returns its claims.
func (f *fixture) signupAccount(t *testing.T, email string) *auth.Claims {
	t.Helper()

	out := f.exec.Signup(context.Background(), &UserSignup{SignupBase: signupBase(email, types.RoleUser)})
	require.IsType(t, Created{}, out)

	account, err := f.store.AccountByEmail(context.Background(), email)
	require.NoError(t, err)

	return &auth.Claims{AccountID: account.ID, Email: account.Email, Role: account.Role}
}

func (f *fixture) registerExpert(t *testing.T, email string, specialties ...string) *auth.Claims {
	t.Helper()

	claims := f.signupAccount(t, email)
	out := f.exec.RegisterExpert(context.Background(), claims, &RegisterExpertCommand{
		Title:       "Field Scientist",
		Specialties: specialties,
		Bio:         "Twenty years of field work on environmental incidents.",
	})
	require.IsType(t, Created{}, out)

	return claims
}

func reportCommand(category string, urgency types.Urgency) *CreateReportCommand {
	return &CreateReportCommand{
		Title:       "Oil on the river bank",
		Description: "A thick film of oil has been spreading along the east bank since Monday.",
		Location:    "Riverside Park, Springfield",
		Urgency:     urgency,
		Category:    category,
	}
}

func TestSignupCreatesAccount(t *testing.T) {
	f := newFixture(t)

	out := f.exec.Signup(context.Background(), &UserSignup{
		SignupBase: signupBase("Ana@Example.com", types.RoleUser),
		Interests:  []string{"recycling"},
	})

	require.Equal(t, Created{Value: MessageBody{Message: "User created successfully"}}, out)

	account, err := f.store.AccountByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, account.Role)
	assert.Equal(t, []string{"recycling"}, account.Interests)
	assert.NotEqual(t, "Passw0rdOk", account.PasswordHash)
	assert.True(t, auth.Verify("Passw0rdOk", account.PasswordHash))
}

func TestSignupVariantsSetRoleFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.IsType(t, Created{}, f.exec.Signup(ctx, &ExpertSignup{
		SignupBase: signupBase("expert@example.com", types.RoleExpert),
		Expertise:  " Hydrology ",
	}))
	require.IsType(t, Created{}, f.exec.Signup(ctx, &VolunteerSignup{
		SignupBase: signupBase("volunteer@example.com", types.RoleVolunteer),
		Skills:     []string{"first aid", "driving"},
	}))

	expert, err := f.store.AccountByEmail(ctx, "expert@example.com")
	require.NoError(t, err)
	assert.Equal(t, types.RoleExpert, expert.Role)
	require.NotNil(t, expert.Expertise)
	assert.Equal(t, "Hydrology", *expert.Expertise)

	volunteer, err := f.store.AccountByEmail(ctx, "volunteer@example.com")
	require.NoError(t, err)
	assert.Equal(t, types.RoleVolunteer, volunteer.Role)
	assert.Equal(t, []string{"first aid", "driving"}, volunteer.Skills)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.IsType(t, Created{}, f.exec.Signup(ctx, &UserSignup{SignupBase: signupBase("ana@example.com", types.RoleUser)}))

	out := f.exec.Signup(ctx, &VolunteerSignup{
		SignupBase: signupBase("ANA@example.com", types.RoleVolunteer),
		Skills:     []string{"cleanup"},
	})

	assert.Equal(t, Conflict{Reason: "An account with this email already exists"}, out)
	assert.Equal(t, 1, f.store.AccountCount())
}

func TestConcurrentDuplicateSignupsCreateOneAccount(t *testing.T) {
	f := newFixture(t)

	const attempts = 6

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]int)
	)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := f.exec.Signup(context.Background(), &UserSignup{SignupBase: signupBase("race@example.com", types.RoleUser)})

			mu.Lock()
			results[fmt.Sprintf("%T", out)]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, results["mutation.Created"])
	assert.Equal(t, attempts-1, results["mutation.Conflict"])
	assert.Equal(t, 1, f.store.AccountCount())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signupAccount(t, "ana@example.com")

	unknown := f.exec.Login(ctx, &LoginCommand{Email: "nobody@example.com", Password: "Passw0rdOk"})
	wrong := f.exec.Login(ctx, &LoginCommand{Email: "ana@example.com", Password: "WrongPass1"})

	unknownAuth, ok := unknown.(Unauthorized)
	require.True(t, ok)
	wrongAuth, ok := wrong.(Unauthorized)
	require.True(t, ok)

	assert.Equal(t, MsgInvalidCredentials, unknownAuth.Message)
	assert.Equal(t, unknownAuth.Message, wrongAuth.Message)
}

func TestLoginIssuesTokenForTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signupAccount(t, "ana@example.com")

	tests := map[bool]int{
		false: 86400,
		true:  2592000,
	}

	for rememberMe, seconds := range tests {
		out := f.exec.Login(ctx, &LoginCommand{Email: "ana@example.com", Password: "Passw0rdOk", RememberMe: rememberMe})

		succeeded, ok := out.(Succeeded)
		require.True(t, ok)
		result, ok := succeeded.Value.(*LoginResult)
		require.True(t, ok)

		assert.Equal(t, seconds, int(result.MaxAge.Seconds()))
		assert.Equal(t, claims.AccountID, result.User.ID)

		verified, err := f.tokens.VerifyToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, claims.AccountID, verified.AccountID)
		assert.Equal(t, seconds, int(verified.ExpiresAt.Sub(verified.IssuedAt).Seconds()))
	}
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signupAccount(t, "ana@example.com")

	out := f.exec.CurrentUser(ctx, claims)
	succeeded, ok := out.(Succeeded)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", succeeded.Value.(UserBody).User.Email)

	assert.Equal(t, NotFound{Resource: "User"}, f.exec.CurrentUser(ctx, &auth.Claims{AccountID: "missing"}))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signupAccount(t, "ana@example.com")

	bio := "Weekend river cleanup organiser."
	out := f.exec.UpdateProfile(ctx, claims, &UpdateProfileCommand{
		Bio:         &bio,
		Skills:      []string{"kayaking"},
		SocialLinks: &types.SocialLinks{Website: "https://ana.example.com"},
	})

	succeeded, ok := out.(Succeeded)
	require.True(t, ok)
	body := succeeded.Value.(ProfileBody)
	assert.Equal(t, "Profile updated successfully", body.Message)
	require.NotNil(t, body.User.Bio)
	assert.Equal(t, bio, *body.User.Bio)
	assert.Equal(t, []string{"kayaking"}, body.User.Skills)
	assert.Equal(t, "Ana Silva", body.User.Name)

	assert.Equal(t, NotFound{Resource: "User"}, f.exec.UpdateProfile(ctx, &auth.Claims{AccountID: "missing"}, &UpdateProfileCommand{Bio: &bio}))
}

func TestRegisterExpert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.registerExpert(t, "expert@example.com", "water-pollution")

	account, err := f.store.Account(ctx, claims.AccountID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleExpert, account.Role)

	again := f.exec.RegisterExpert(ctx, claims, &RegisterExpertCommand{
		Title:       "Field Scientist",
		Specialties: []string{"wetlands"},
		Bio:         "Twenty years of field work on environmental incidents.",
	})
	assert.Equal(t, Conflict{Reason: "Expert profile already registered"}, again)

	missing := f.exec.RegisterExpert(ctx, &auth.Claims{AccountID: "missing"}, &RegisterExpertCommand{Title: "x", Specialties: []string{"y"}})
	unauthorized, ok := missing.(Unauthorized)
	require.True(t, ok)
	assert.Equal(t, MsgUnauthenticated, unauthorized.Message)
}

func TestCreateReportNotifiesMatchingExperts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.registerExpert(t, "first@example.com", "water-pollution", "wetlands")
	second := f.registerExpert(t, "second@example.com", "water-pollution")
	f.registerExpert(t, "third@example.com", "air-pollution")
	reporter := f.signupAccount(t, "reporter@example.com")

	out := f.exec.CreateReport(ctx, reporter, reportCommand("water-pollution", types.UrgencyHigh))

	created, ok := out.(Created)
	require.True(t, ok, "got %T", out)
	report := created.Value.(*types.Report)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, types.ReportStatusPending, report.Status)
	assert.Equal(t, reporter.AccountID, report.AccountID)

	notifications := f.store.Notifications(report.ID)
	require.Len(t, notifications, 2)

	recipients := make([]string, 0, len(notifications))
	for _, n := range notifications {
		assert.Equal(t, report.ID, n.ReportID)
		assert.Equal(t, types.NotificationTypeNewReport, n.Type)
		assert.Equal(t, "/issues/"+report.ID, n.Link)
		assert.False(t, n.IsRead)
		recipients = append(recipients, n.AccountID)
	}
	assert.ElementsMatch(t, []string{first.AccountID, second.AccountID}, recipients)

	owner, err := f.store.Account(ctx, reporter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 10, owner.ImpactPoints)
}

func TestCreateReportSkipsReporterExpertise(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expert := f.registerExpert(t, "expert@example.com", "wildlife")

	out := f.exec.CreateReport(ctx, expert, reportCommand("wildlife", types.UrgencyLow))
	created, ok := out.(Created)
	require.True(t, ok)

	assert.Empty(t, f.store.Notifications(created.Value.(*types.Report).ID))
}

func TestCreateReportFanOutFailureIsPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerExpert(t, "expert@example.com", "water-pollution")
	reporter := f.signupAccount(t, "reporter@example.com")
	f.store.FailNotifications = errors.New("notification insert failed")

	out := f.exec.CreateReport(ctx, reporter, reportCommand("water-pollution", types.UrgencyCritical))

	partial, ok := out.(PartialFailure)
	require.True(t, ok, "got %T", out)
	report := partial.Value.(*types.Report)
	assert.EqualError(t, partial.Err, "notification insert failed")
	assert.Empty(t, f.store.Notifications(report.ID))

	owner, err := f.store.Account(ctx, reporter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 10, owner.ImpactPoints)

	listed, total, err := f.store.Reports(ctx, types.ReportFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, report.ID, listed[0].ID)
}

func TestCreateReportUnknownAccount(t *testing.T) {
	f := newFixture(t)

	out := f.exec.CreateReport(context.Background(), &auth.Claims{AccountID: "missing"}, reportCommand("wildlife", types.UrgencyLow))
	assert.Equal(t, NotFound{Resource: "User"}, out)
}

func TestListReportsPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reporter := f.signupAccount(t, "reporter@example.com")

	for range 25 {
		require.IsType(t, Created{}, f.exec.CreateReport(ctx, reporter, reportCommand("illegal-dumping", types.UrgencyHigh)))
	}
	for range 3 {
		require.IsType(t, Created{}, f.exec.CreateReport(ctx, reporter, reportCommand("illegal-dumping", types.UrgencyLow)))
	}

	out := f.exec.ListReports(ctx, &ListReportsQuery{Urgency: types.UrgencyHigh, Page: 2, Limit: 10})

	succeeded, ok := out.(Succeeded)
	require.True(t, ok)
	page := succeeded.Value.(*types.ReportPage)

	assert.Len(t, page.Reports, 10)
	assert.Equal(t, types.PageMeta{Total: 25, Page: 2, Limit: 10, TotalPages: 3}, page.Meta)
	for _, report := range page.Reports {
		assert.Equal(t, types.UrgencyHigh, report.Urgency)
	}

	last := f.exec.ListReports(ctx, &ListReportsQuery{Urgency: types.UrgencyHigh, Page: 3, Limit: 10})
	assert.Len(t, last.(Succeeded).Value.(*types.ReportPage).Reports, 5)

	beyond, total, err := f.store.Reports(ctx, types.ReportFilter{Page: 4611686018427387905, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.Equal(t, 28, total)
}

func TestSignUpload(t *testing.T) {
	f := newFixture(t)
	claims := &auth.Claims{AccountID: "acct_1"}

	out := f.exec.SignUpload(context.Background(), claims, &SignUploadCommand{Filename: "spill photo.png", ContentType: "image/png"})

	succeeded, ok := out.(Succeeded)
	require.True(t, ok)
	ticket := succeeded.Value.(*UploadTicket)

	assert.Equal(t, "image", ticket.FileType)
	assert.Equal(t, "image/png", ticket.ContentType)
	assert.True(t, strings.HasPrefix(ticket.Filename, "uploads/acct_1/"), ticket.Filename)
	assert.True(t, strings.HasSuffix(ticket.Filename, "-spill-photo.png"), ticket.Filename)
	assert.Equal(t, "http://uploads.test/"+ticket.Filename, ticket.PresignedURL)
}

func TestSignUploadRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)

	out := f.exec.SignUpload(context.Background(), &auth.Claims{AccountID: "acct_1"}, &SignUploadCommand{Filename: "notes.txt", ContentType: "text/plain"})

	failed, ok := out.(ValidationFailed)
	require.True(t, ok)
	assert.True(t, failed.Violations.Has("contentType"))
}

func TestUploadKeySanitizesFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/my photo.png": "-my-photo.png",
		`C:\Users\ana\spill.jpg`: "-spill.jpg",
		"???":                    "-file",
	}

	for filename, suffix := range tests {
		key := UploadKey("acct_1", filename)
		assert.True(t, strings.HasPrefix(key, "uploads/acct_1/"), key)
		assert.True(t, strings.HasSuffix(key, suffix), key)
		assert.NotContains(t, strings.TrimPrefix(key, "uploads/acct_1/"), "/")
	}
}
