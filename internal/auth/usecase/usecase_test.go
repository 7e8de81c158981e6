package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/auth/outbound/memory"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/hash"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	phonepkg "github.com/shandysiswandi/smsauth/internal/pkg/phone"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
)

const testConfig = `
modules:
  auth:
    otp:
      ttl_seconds: 300
    sms:
      timeout_seconds: 2
      register_template: "Code: {code}"
      reset_template: "Reset code: {code}"
`

type fakeRepo struct {
	mu        sync.Mutex
	accounts  map[string]entity.Account
	existsErr error
	createErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: map[string]entity.Account{}}
}

func (f *fakeRepo) ExistsByPhone(_ context.Context, phoneKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.accounts[phoneKey]
	return ok, nil
}

func (f *fakeRepo) CreateAccount(_ context.Context, acc entity.NewAccount) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	if _, ok := f.accounts[acc.PhoneKey]; ok {
		return 0, goerror.ErrConflict
	}
	f.accounts[acc.PhoneKey] = entity.Account{
		ID:           acc.ID,
		PhoneKey:     acc.PhoneKey,
		DisplayName:  acc.DisplayName,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt,
		UpdatedAt:    acc.CreatedAt,
	}
	return acc.ID, nil
}

func (f *fakeRepo) FindByPhone(_ context.Context, phoneKey string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[phoneKey]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

func (f *fakeRepo) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for k, acc := range f.accounts {
		if acc.ID == id {
			acc.PasswordHash = passwordHash
			f.accounts[k] = acc
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeRepo) failWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
	f.updateErr = err
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

type fakeDispatcher struct {
	mu   sync.Mutex
	res  entity.DeliveryResult
	sent []entity.Notification
}

func (f *fakeDispatcher) Send(ctx context.Context, n entity.Notification) entity.DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	if _, ok := ctx.Deadline(); !ok {
		return entity.DeliveryFailedWith("no deadline")
	}
	return f.res
}

func (f *fakeDispatcher) last() entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// seqCodes hands out codes in order and repeats the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.codes[0]
	if len(s.codes) > 1 {
		s.codes = s.codes[1:]
	}
	return code, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type fixture struct {
	uc         *Usecase
	repo       *fakeRepo
	store      *memory.OTPStore
	dispatcher *fakeDispatcher
	clock      *clock.Frozen
	jwt        jwt.JWT
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	clk := clock.NewFrozen(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	tok, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("k", 64)),
		Issuer: "smsauth-test",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	if len(codes) == 0 {
		codes = []string{"123456"}
	}

	f := &fixture{
		repo:       newFakeRepo(),
		store:      memory.NewOTPStore(clk),
		dispatcher: &fakeDispatcher{res: entity.Delivered("sms-1")},
		clock:      clk,
		jwt:        tok,
	}
	f.uc = New(Dependency{
		RepoDB:       f.repo,
		OTPStore:     f.store,
		RateLimiter:  memory.NewRateLimiter(time.Minute),
		Dispatcher:   f.dispatcher,
		Validator:    v,
		Config:       cfg,
		PasswordHash: hash.NewBcrypt(4, ""),
		OTPGenerator: &seqCodes{codes: codes},
		UID:          &seqID{},
		Clock:        clk,
		JWT:          tok,
		Instrument:   instrument.NewNoop(),
	})

	return f
}

func assertErrCode(t *testing.T, err error, code goerror.Code, status int) {
	t.Helper()

	var ge *goerror.Error
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if ge.Code() != code || ge.StatusCode() != status {
		t.Fatalf("error code=%s status=%d msg=%q, want code=%s status=%d", ge.Code(), ge.StatusCode(), ge.Msg(), code, status)
	}
}

func (f *fixture) register(t *testing.T, phone, password string) int64 {
	t.Helper()

	ctx := context.Background()
	if _, err := f.uc.SendCode(ctx, SendCodeInput{Phone: phone, CountryCode: "+998"}); err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	rec, err := f.store.Peek(ctx, phonepkg.Key(phone, "+998"))
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{
		Phone: phone, CountryCode: "+998", Code: rec.Code, Name: "Ali Valiyev", Password: password,
	})
	if err != nil {
		t.Fatalf("VerifyCode() error = %v", err)
	}
	return out.UserID
}
