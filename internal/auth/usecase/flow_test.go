package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

func TestUsecase_Registration(t *testing.T) {
	// Arrange
	f := newFixture(t, "111111")
	ctx := context.Background()

	// Act
	out, err := f.uc.SendCode(ctx, SendCodeInput{Phone: "+998 (90) 123-45-67", CountryCode: "+998"})

	// Assert
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	if out.Delivery != entity.DeliverySuccess || out.SMSID != "sms-1" {
		t.Fatalf("SendCode() = %+v", out)
	}
	sent := f.dispatcher.last()
	if sent.PhoneKey != "998901234567" || sent.Message != "Code: 111111" || sent.Purpose != entity.PurposeRegister {
		t.Fatalf("dispatched %+v", sent)
	}

	t.Run("wrong code keeps the otp", func(t *testing.T) {
		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{
			Phone: "901234567", CountryCode: "998", Code: "999999", Name: "Ali Valiyev", Password: "secret-pass",
		})
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)

		if _, err := f.store.Peek(ctx, "998901234567"); err != nil {
			t.Fatalf("otp gone after mismatch: %v", err)
		}
	})

	t.Run("right code creates the account once", func(t *testing.T) {
		in := VerifyCodeInput{
			Phone: "+998901234567", CountryCode: "+998", Code: "111111", Name: "  Ali Valiyev ", Password: "secret-pass",
		}

		got, err := f.uc.VerifyCode(ctx, in)
		if err != nil {
			t.Fatalf("VerifyCode() error = %v", err)
		}
		if got.UserID == 0 || f.repo.count() != 1 {
			t.Fatalf("VerifyCode() = %+v, accounts = %d", got, f.repo.count())
		}
		acc, _ := f.repo.FindByPhone(ctx, "998901234567")
		if acc.DisplayName != "Ali Valiyev" || acc.PasswordHash == "secret-pass" {
			t.Fatalf("stored account = %+v", acc)
		}

		_, err = f.uc.VerifyCode(ctx, in)
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
		if f.repo.count() != 1 {
			t.Fatalf("replay created another account")
		}
	})

	t.Run("registered phone cannot request again", func(t *testing.T) {
		f.clock.Advance(2 * time.Minute)

		_, err := f.uc.SendCode(ctx, SendCodeInput{Phone: "901234567", CountryCode: "+998"})
		assertErrCode(t, err, goerror.CodeConflict, http.StatusBadRequest)
	})
}

func TestUsecase_SendCode(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		for _, in := range []SendCodeInput{
			{Phone: "", CountryCode: "+998"},
			{Phone: "901234567", CountryCode: ""},
			{Phone: "12", CountryCode: "1"},
		} {
			_, err := f.uc.SendCode(ctx, in)
			assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
		}
		if len(f.dispatcher.sent) != 0 {
			t.Fatalf("dispatched on invalid input")
		}
	})

	t.Run("rate limited inside window and re-issue replaces code", func(t *testing.T) {
		f := newFixture(t, "111111", "222222")
		in := SendCodeInput{Phone: "901234567", CountryCode: "+998"}

		if _, err := f.uc.SendCode(ctx, in); err != nil {
			t.Fatalf("first SendCode() error = %v", err)
		}

		f.clock.Advance(59 * time.Second)
		_, err := f.uc.SendCode(ctx, in)
		assertErrCode(t, err, goerror.CodeTooManyRequest, http.StatusTooManyRequests)

		f.clock.Advance(time.Second)
		if _, err := f.uc.SendCode(ctx, in); err != nil {
			t.Fatalf("SendCode() after window error = %v", err)
		}

		rec, err := f.store.Peek(ctx, "998901234567")
		if err != nil || rec.Code != "222222" {
			t.Fatalf("Peek() = %+v, %v", rec, err)
		}

		_, err = f.uc.VerifyCode(ctx, VerifyCodeInput{
			Phone: "901234567", CountryCode: "+998", Code: "111111", Name: "Ali", Password: "secret-pass",
		})
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
	})

	t.Run("failed delivery keeps the code", func(t *testing.T) {
		f := newFixture(t, "333333")
		f.dispatcher.res = entity.DeliveryFailedWith("sms gateway timeout")

		out, err := f.uc.SendCode(ctx, SendCodeInput{Phone: "901234567", CountryCode: "+998"})
		if err != nil {
			t.Fatalf("SendCode() error = %v", err)
		}
		if out.Delivery != entity.DeliveryFailed || out.Reason != "sms gateway timeout" {
			t.Fatalf("SendCode() = %+v", out)
		}

		if _, err := f.uc.VerifyCode(ctx, VerifyCodeInput{
			Phone: "901234567", CountryCode: "+998", Code: "333333", Name: "Ali", Password: "secret-pass",
		}); err != nil {
			t.Fatalf("VerifyCode() after failed delivery error = %v", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.existsErr = errors.New("db down")

		_, err := f.uc.SendCode(ctx, SendCodeInput{Phone: "901234567", CountryCode: "+998"})
		assertErrCode(t, err, goerror.CodeInternal, http.StatusInternalServerError)
	})
}

func TestUsecase_VerifyCode(t *testing.T) {
	ctx := context.Background()
	valid := VerifyCodeInput{Phone: "901234567", CountryCode: "+998", Code: "123456", Name: "Ali Valiyev", Password: "secret-pass"}

	t.Run("no code issued", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.VerifyCode(ctx, valid)
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.uc.SendCode(ctx, SendCodeInput{Phone: valid.Phone, CountryCode: valid.CountryCode}); err != nil {
			t.Fatalf("SendCode() error = %v", err)
		}
		f.clock.Advance(5 * time.Minute)

		_, err := f.uc.VerifyCode(ctx, valid)
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
	})

	t.Run("reset code cannot register", func(t *testing.T) {
		f := newFixture(t)
		now := f.clock.Now()
		_ = f.store.Issue(ctx, entity.OTP{
			PhoneKey: "998901234567", Code: "123456", Purpose: entity.PurposeResetPassword,
			IssuedAt: now, ExpiresAt: now.Add(time.Minute),
		})

		_, err := f.uc.VerifyCode(ctx, valid)
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
	})

	t.Run("invalid name", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.Name = "R2D2"
		_, err := f.uc.VerifyCode(ctx, in)
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
	})

	t.Run("storage conflict", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.uc.SendCode(ctx, SendCodeInput{Phone: valid.Phone, CountryCode: valid.CountryCode}); err != nil {
			t.Fatalf("SendCode() error = %v", err)
		}
		f.repo.createErr = goerror.ErrConflict

		_, err := f.uc.VerifyCode(ctx, valid)
		assertErrCode(t, err, goerror.CodeConflict, http.StatusBadRequest)
	})
}

func TestUsecase_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.register(t, "901234567", "secret-pass")

	tests := []struct {
		name    string
		in      LoginInput
		wantErr bool
	}{
		{name: "ok with country code", in: LoginInput{Phone: "90 123 45 67", CountryCode: "+998", Password: "secret-pass"}},
		{name: "ok full number", in: LoginInput{Phone: "+998901234567", Password: "secret-pass"}},
		{name: "wrong password", in: LoginInput{Phone: "+998901234567", Password: "secret-pasS"}, wantErr: true},
		{name: "unknown phone", in: LoginInput{Phone: "+998909999999", Password: "secret-pass"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			out, err := f.uc.Login(ctx, tt.in)

			// Assert
			if tt.wantErr {
				assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if out.UserID != id {
				t.Fatalf("UserID = %d, want %d", out.UserID, id)
			}
			claims, err := f.jwt.Verify(out.AccessToken)
			if err != nil || claims.UserID != id || claims.PhoneKey != "998901234567" {
				t.Fatalf("Verify() = %+v, %v", claims, err)
			}
		})
	}
}

func TestUsecase_PasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "111111", "555555")
	f.register(t, "901234567", "old-password")
	f.clock.Advance(time.Minute)

	t.Run("unregistered phone", func(t *testing.T) {
		_, err := f.uc.ForgotPassword(ctx, ForgotPasswordInput{Phone: "909999999", CountryCode: "+998"})
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
	})

	out, err := f.uc.ForgotPassword(ctx, ForgotPasswordInput{Phone: "901234567", CountryCode: "+998"})
	if err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	if out.Delivery != entity.DeliverySuccess {
		t.Fatalf("ForgotPassword() = %+v", out)
	}
	if sent := f.dispatcher.last(); sent.Message != "Reset code: 555555" || sent.Purpose != entity.PurposeResetPassword {
		t.Fatalf("dispatched %+v", sent)
	}

	t.Run("mismatched confirmation has no side effects", func(t *testing.T) {
		err := f.uc.UpdatePassword(ctx, UpdatePasswordInput{
			Phone: "+998901234567", Code: "555555", NewPassword: "new-password", ConfirmPassword: "new-passw0rd",
		})
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)

		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Fields()["confirm_password"] == "" {
			t.Fatalf("error = %v, want confirm_password field", err)
		}
		if _, err := f.store.Peek(ctx, "998901234567"); err != nil {
			t.Fatalf("otp consumed by rejected update: %v", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		err := f.uc.UpdatePassword(ctx, UpdatePasswordInput{
			Phone: "+998901234567", Code: "000000", NewPassword: "new-password", ConfirmPassword: "new-password",
		})
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
	})

	t.Run("update then login", func(t *testing.T) {
		in := UpdatePasswordInput{
			Phone: "+998901234567", Code: "555555", NewPassword: "new-password", ConfirmPassword: "new-password",
		}
		if err := f.uc.UpdatePassword(ctx, in); err != nil {
			t.Fatalf("UpdatePassword() error = %v", err)
		}

		err := f.uc.UpdatePassword(ctx, in)
		assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)

		if _, err := f.uc.Login(ctx, LoginInput{Phone: "+998901234567", Password: "new-password"}); err != nil {
			t.Fatalf("Login() with new password error = %v", err)
		}
		_, err = f.uc.Login(ctx, LoginInput{Phone: "+998901234567", Password: "old-password"})
		assertErrCode(t, err, goerror.CodeInvalidInput, http.StatusBadRequest)
	})
}

func TestUsecase_RegisterCodeCannotResetPassword(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, "111111", "222222")
	f.register(t, "901234567", "old-password")
	now := f.clock.Now()
	_ = f.store.Issue(ctx, entity.OTP{
		PhoneKey: "998901234567", Code: "222222", Purpose: entity.PurposeRegister,
		IssuedAt: now, ExpiresAt: now.Add(time.Minute),
	})

	// Act
	err := f.uc.UpdatePassword(ctx, UpdatePasswordInput{
		Phone: "+998901234567", Code: "222222", NewPassword: "new-password", ConfirmPassword: "new-password",
	})

	// Assert
	assertErrCode(t, err, goerror.CodeNotFound, http.StatusBadRequest)
}

func TestUsecase_VerifyCode_RetryAfterWriteFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, "111111")
	if _, err := f.uc.SendCode(ctx, SendCodeInput{Phone: "901234567", CountryCode: "+998"}); err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	in := VerifyCodeInput{
		Phone: "901234567", CountryCode: "+998", Code: "111111", Name: "Ali Valiyev", Password: "secret-pass",
	}
	f.repo.failWrites(errors.New("db down"))

	// Act
	_, err := f.uc.VerifyCode(ctx, in)

	// Assert
	assertErrCode(t, err, goerror.CodeInternal, http.StatusInternalServerError)
	rec, err := f.store.Peek(ctx, "998901234567")
	if err != nil || rec.Code != "111111" || rec.Purpose != entity.PurposeRegister {
		t.Fatalf("otp after failed write = %+v, %v; want the same code back", rec, err)
	}

	f.repo.failWrites(nil)
	out, err := f.uc.VerifyCode(ctx, in)
	if err != nil {
		t.Fatalf("VerifyCode() retry error = %v", err)
	}
	if out.UserID == 0 || f.repo.count() != 1 {
		t.Fatalf("VerifyCode() retry = %+v, accounts = %d", out, f.repo.count())
	}
	if _, err := f.store.Peek(ctx, "998901234567"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("otp still live after success: %v", err)
	}
}

func TestUsecase_UpdatePassword_RetryAfterWriteFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, "111111", "555555")
	f.register(t, "901234567", "old-password")
	f.clock.Advance(time.Minute)
	if _, err := f.uc.ForgotPassword(ctx, ForgotPasswordInput{Phone: "901234567", CountryCode: "+998"}); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	in := UpdatePasswordInput{
		Phone: "901234567", CountryCode: "+998", Code: "555555", NewPassword: "new-password", ConfirmPassword: "new-password",
	}
	f.repo.failWrites(errors.New("db down"))

	// Act
	err := f.uc.UpdatePassword(ctx, in)

	// Assert
	assertErrCode(t, err, goerror.CodeInternal, http.StatusInternalServerError)

	f.repo.failWrites(nil)
	if err := f.uc.UpdatePassword(ctx, in); err != nil {
		t.Fatalf("UpdatePassword() retry error = %v", err)
	}
	if _, err := f.uc.Login(ctx, LoginInput{Phone: "+998901234567", Password: "new-password"}); err != nil {
		t.Fatalf("Login() with new password error = %v", err)
	}
}

func TestUsecase_LocalNumberStartingWithCountryDigits(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, "111111")
	f.register(t, "99 812 34 56", "secret-pass")

	// Act
	_, errFull := f.uc.Login(ctx, LoginInput{Phone: "+998 99 812 34 56", Password: "secret-pass"})
	_, errLocal := f.uc.Login(ctx, LoginInput{Phone: "998123456", CountryCode: "+998", Password: "secret-pass"})

	// Assert
	if errFull != nil || errLocal != nil {
		t.Fatalf("Login() full = %v, local = %v; want both to find the account", errFull, errLocal)
	}
	if _, err := f.repo.FindByPhone(ctx, "998998123456"); err != nil {
		t.Fatalf("account key: %v", err)
	}
}
