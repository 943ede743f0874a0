package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
	"github.com/aryngazy/fest-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrationRepo struct {
	created []*models.Registration

	emailExists    bool
	teamNameExists bool
	memberExists   bool

	existsErr error
	createErr error
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.ID = len(f.created) + 1
	f.created = append(f.created, reg)
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	for _, reg := range f.created {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) ExistsByEventAndEmail(ctx context.Context, eventID, email string) (bool, error) {
	if f.existsErr != nil || f.emailExists {
		return f.emailExists, f.existsErr
	}
	for _, reg := range f.created {
		if reg.EventID == eventID && strings.EqualFold(reg.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) ExistsByEventAndTeamName(ctx context.Context, eventID, teamName string) (bool, error) {
	if f.existsErr != nil || f.teamNameExists {
		return f.teamNameExists, f.existsErr
	}
	for _, reg := range f.created {
		if reg.EventID == eventID && reg.TeamName != nil && strings.EqualFold(*reg.TeamName, teamName) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) ExistsByEventAndMember(ctx context.Context, eventID string, members []string) (bool, error) {
	if f.existsErr != nil || f.memberExists {
		return f.memberExists, f.existsErr
	}
	for _, reg := range f.created {
		if reg.EventID != eventID {
			continue
		}
		for _, m := range members {
			if strings.EqualFold(reg.Email, m) {
				return true, nil
			}
			for _, existing := range reg.TeamMembers {
				if strings.EqualFold(existing, m) {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) ListByEmail(ctx context.Context, email string) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.created {
		if reg.Email == email {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) List(ctx context.Context) ([]models.Registration, error) {
	out := make([]models.Registration, 0, len(f.created))
	for _, reg := range f.created {
		out = append(out, *reg)
	}
	return out, nil
}

func (f *fakeRegistrationRepo) Count(ctx context.Context) (int, error) {
	return len(f.created), nil
}

func (f *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	for _, reg := range f.created {
		if reg.ID == id {
			reg.Status = status
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *fakeRegistrationRepo, uploader *fakeUploader) *RegistrationService {
	return NewRegistrationService(repo, uploader, nil, nil, testLogger())
}

func soloInput() SubmitInput {
	return SubmitInput{
		SubmitterEmail: "alice@example.com",
		EventID:        "0", // Code Clash
		Name:           "Alice",
		Email:          "alice@example.com",
		Phone:          "9876543210",
		TransactionID:  "TXN-123",
		Screenshot:     strings.NewReader("png-bytes"),
		ScreenshotName: "payment.png",
		ContentType:    "image/png",
	}
}

func teamInput() SubmitInput {
	in := soloInput()
	in.EventID = "5" // PUBG Mobile, team of 4
	in.TeamName = "Night Owls"
	in.TeamMembers = "alice@example.com, bob@example.com, carol@example.com, dave@example.com"
	return in
}

func TestSubmit_SoloSuccess(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	uploader := &fakeUploader{}
	svc := newTestService(repo, uploader)

	result := svc.Submit(context.Background(), soloInput())

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "Registered for Code Clash successfully", result.Message)
	require.Len(t, repo.created, 1)

	reg := repo.created[0]
	assert.Equal(t, models.RegistrationPending, reg.Status)
	assert.Equal(t, "0", reg.EventID)
	assert.NotEmpty(t, reg.PublicID)
	assert.Contains(t, reg.PaymentScreenshotURL, "payments/")
	assert.Equal(t, 1, uploader.calls)
}

func TestSubmit_PersistsSubmitterIdentityAndContactSeparately(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	svc := newTestService(repo, &fakeUploader{})

	in := soloInput()
	in.Email = "parent@example.com" // контакт может отличаться от подателя
	result := svc.Submit(context.Background(), in)

	require.Equal(t, "success", result.Status)
	reg := repo.created[0]
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "parent@example.com", reg.ContactEmail)
}

func TestSubmit_SameSubmitterDifferentContactRejected(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	uploader := &fakeUploader{}
	svc := newTestService(repo, uploader)

	first := soloInput()
	first.Email = "contact-one@example.com"
	require.Equal(t, "success", svc.Submit(context.Background(), first).Status)

	// Смена контактного email не обходит уникальность по подателю.
	second := soloInput()
	second.Email = "contact-two@example.com"
	result := svc.Submit(context.Background(), second)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "You have already registered for Code Clash", result.Message)
	assert.Equal(t, 1, uploader.calls, "the duplicate must be caught before a second upload")
	assert.Len(t, repo.created, 1)
}

func TestSubmit_TeamSuccess(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	svc := newTestService(repo, &fakeUploader{})

	result := svc.Submit(context.Background(), teamInput())

	assert.Equal(t, "success", result.Status)
	require.Len(t, repo.created, 1)

	reg := repo.created[0]
	require.NotNil(t, reg.TeamName)
	assert.Equal(t, "Night Owls", *reg.TeamName)
	assert.Equal(t, []string{
		"alice@example.com", "bob@example.com", "carol@example.com", "dave@example.com",
	}, reg.TeamMembers)
}

func TestSubmit_UnknownEvent(t *testing.T) {
	uploader := &fakeUploader{}
	svc := newTestService(&fakeRegistrationRepo{}, uploader)

	in := soloInput()
	in.EventID = "42"
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Please select a valid event", result.Message)
	assert.Zero(t, uploader.calls)
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	svc := newTestService(&fakeRegistrationRepo{}, &fakeUploader{})

	in := soloInput()
	in.Name = "  "
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Please fill in the required fields: Name, Email", result.Message)
}

func TestSubmit_RosterSizeMismatch(t *testing.T) {
	uploader := &fakeUploader{}
	svc := newTestService(&fakeRegistrationRepo{}, uploader)

	in := teamInput()
	in.TeamMembers = "alice@example.com, bob@example.com"
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "To participate in Battle Blitz: PUBG Mobile, you need to have 4 members in your team", result.Message)
	assert.Zero(t, uploader.calls, "validation failures must not burn an upload")
}

func TestSubmit_SubmitterNotInRoster(t *testing.T) {
	uploader := &fakeUploader{}
	svc := newTestService(&fakeRegistrationRepo{}, uploader)

	in := teamInput()
	in.TeamMembers = "bob@example.com, carol@example.com, dave@example.com, erin@example.com"
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Your own email address must be included in the team members list", result.Message)
	assert.Zero(t, uploader.calls)
}

func TestSubmit_DuplicateRosterEmails(t *testing.T) {
	svc := newTestService(&fakeRegistrationRepo{}, &fakeUploader{})

	in := teamInput()
	in.TeamMembers = "alice@example.com, bob@example.com, bob@example.com, carol@example.com"
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Team member email addresses must be unique", result.Message)
}

func TestSubmit_InvalidPhone(t *testing.T) {
	svc := newTestService(&fakeRegistrationRepo{}, &fakeUploader{})

	in := soloInput()
	in.Phone = "12345"
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Please enter a valid 10-digit phone number", result.Message)
}

func TestSubmit_MissingScreenshot(t *testing.T) {
	uploader := &fakeUploader{}
	svc := newTestService(&fakeRegistrationRepo{}, uploader)

	in := soloInput()
	in.Screenshot = nil
	result := svc.Submit(context.Background(), in)

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Please upload the payment screenshot", result.Message)
	assert.Zero(t, uploader.calls)
}

func TestSubmit_DuplicateEmailBeforeUpload(t *testing.T) {
	repo := &fakeRegistrationRepo{emailExists: true}
	uploader := &fakeUploader{}
	svc := newTestService(repo, uploader)

	result := svc.Submit(context.Background(), soloInput())

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "You have already registered for Code Clash", result.Message)
	assert.Zero(t, uploader.calls, "known duplicates must be rejected before the upload")
	assert.Empty(t, repo.created)
}

func TestSubmit_TeamNameTakenAfterUpload(t *testing.T) {
	repo := &fakeRegistrationRepo{teamNameExists: true}
	uploader := &fakeUploader{}
	svc := newTestService(repo, uploader)

	result := svc.Submit(context.Background(), teamInput())

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Team name 'Night Owls' is already taken for Battle Blitz: PUBG Mobile", result.Message)
	assert.Equal(t, 1, uploader.calls)
	assert.Empty(t, repo.created)
}

func TestSubmit_MemberAlreadyRegistered(t *testing.T) {
	repo := &fakeRegistrationRepo{memberExists: true}
	svc := newTestService(repo, &fakeUploader{})

	result := svc.Submit(context.Background(), teamInput())

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "One of your team members is already registered for Battle Blitz: PUBG Mobile", result.Message)
	assert.Empty(t, repo.created)
}

func TestSubmit_UploadFailureMasked(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	uploader := &fakeUploader{err: errors.New("connection reset")}
	svc := newTestService(repo, uploader)

	result := svc.Submit(context.Background(), soloInput())

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, GenericRetryMessage, result.Message, "infrastructure details must never leak to the user")
	assert.Empty(t, repo.created)
}

func TestSubmit_InsertRaceMapsToDuplicateMessage(t *testing.T) {
	repo := &fakeRegistrationRepo{createErr: repositories.ErrRegistrationEmailConflict}
	svc := newTestService(repo, &fakeUploader{})

	result := svc.Submit(context.Background(), soloInput())

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "You have already registered for Code Clash", result.Message)
}

func TestSubmit_NormalizesEmails(t *testing.T) {
	repo := &fakeRegistrationRepo{}
	svc := newTestService(repo, &fakeUploader{})

	in := teamInput()
	in.SubmitterEmail = "  ALICE@Example.COM "
	in.Email = "Alice@Example.com"
	in.TeamMembers = "Alice@Example.com, BOB@example.com, carol@example.com, dave@example.com"
	result := svc.Submit(context.Background(), in)

	require.Equal(t, "success", result.Status)
	reg := repo.created[0]
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "alice@example.com", reg.ContactEmail)
	assert.Equal(t, "alice@example.com", reg.TeamMembers[0])
	assert.Equal(t, "bob@example.com", reg.TeamMembers[1])
}

func TestParseRoster(t *testing.T) {
	roster := ParseRoster(" A@x.com, ,b@y.com ,")
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, roster)

	assert.Empty(t, ParseRoster(""))
	assert.Empty(t, ParseRoster(" , , "))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, isValidPhone("0123456789"))
	assert.False(t, isValidPhone("012345678"))
	assert.False(t, isValidPhone("01234567890"))
	assert.False(t, isValidPhone("01234o6789"))
	assert.False(t, isValidPhone(""))
}
