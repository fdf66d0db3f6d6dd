package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rapidaid/internal/models"
	"rapidaid/internal/utils"
)

const testJWTSecret = "test-secret"

type authFixture struct {
	svc       AuthService
	patients  *fakePatientRepo
	drivers   *fakeDriverRepo
	hospitals *fakeHospitalRepo
	otps      *fakeOTPRepo
	cache     *fakeCache
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		patients:  newFakePatientRepo(),
		drivers:   newFakeDriverRepo(),
		hospitals: newFakeHospitalRepo(),
		otps:      newFakeOTPRepo(),
		cache:     newFakeCache(),
	}
	f.svc = NewAuthService(
		f.patients, f.drivers, f.hospitals, f.otps,
		nil, f.cache, newTestLogger(), testJWTSecret, "+15550000000",
	)
	return f
}

func (f *authFixture) seedOTP(phone, code string) {
	_ = f.otps.Create(context.Background(), &models.OTPVerification{
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   time.Now().Add(utils.OTPExpiry),
	})
}

func TestRequestPatientOTP(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	err := f.svc.RequestPatientOTP(ctx, RequestOTPCommand{PhoneNumber: "5550100123"})
	if err != nil {
		t.Fatalf("RequestPatientOTP failed: %v", err)
	}

	if len(f.otps.otps) != 1 {
		t.Fatalf("expected 1 stored code, got %d", len(f.otps.otps))
	}
	otp := f.otps.otps[0]
	if otp.PhoneNumber != "+15550100123" {
		t.Errorf("phone should be normalized, got %q", otp.PhoneNumber)
	}
	if len(otp.Code) != utils.OTPLength {
		t.Errorf("code length = %d, want %d", len(otp.Code), utils.OTPLength)
	}
	if otp.IsExpired() {
		t.Error("fresh code should not be expired")
	}
}

func TestRequestPatientOTPRejectsInvalidPhone(t *testing.T) {
	f := newAuthFixture()

	err := f.svc.RequestPatientOTP(context.Background(), RequestOTPCommand{PhoneNumber: "abc"})
	if err == nil {
		t.Fatal("expected error for invalid phone number")
	}
	if len(f.otps.otps) != 0 {
		t.Error("no code should be stored for an invalid number")
	}
}

func TestRequestPatientOTPRateLimited(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	cmd := RequestOTPCommand{PhoneNumber: "+15550100123"}

	for i := int64(0); i < utils.OTPRateLimit; i++ {
		if err := f.svc.RequestPatientOTP(ctx, cmd); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}
	if err := f.svc.RequestPatientOTP(ctx, cmd); err == nil {
		t.Fatal("request past the limit should be throttled")
	}
}

func TestVerifyPatientOTPFirstLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	phone := "+15550100123"

	f.seedOTP(phone, "1234")
	_, err := f.svc.VerifyPatientOTP(ctx, VerifyOTPCommand{PhoneNumber: phone, Code: "1234"})
	if err == nil || err.Error() != "name required for first login" {
		t.Fatalf("first login without a name should fail, got %v", err)
	}

	// The failed attempt consumed the code; issue another.
	f.seedOTP(phone, "5678")
	result, err := f.svc.VerifyPatientOTP(ctx, VerifyOTPCommand{
		PhoneNumber: phone, Code: "5678", Name: "Asha", Age: 34,
	})
	if err != nil {
		t.Fatalf("VerifyPatientOTP failed: %v", err)
	}

	if result.Actor.Role != models.ActorRolePatient {
		t.Errorf("actor role = %s, want patient", result.Actor.Role)
	}
	patient, err := f.patients.GetByPhone(ctx, phone)
	if err != nil {
		t.Fatalf("patient not created: %v", err)
	}
	if !patient.IsVerified || patient.Name != "Asha" || patient.Age != 34 {
		t.Error("patient should be created verified with the given profile")
	}

	claims, err := utils.ValidateToken(result.Tokens.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.ActorID != patient.ID || claims.ActorRole != string(models.ActorRolePatient) {
		t.Error("token claims should identify the patient")
	}
}

func TestVerifyPatientOTPWrongCode(t *testing.T) {
	f := newAuthFixture()
	phone := "+15550100123"
	f.seedOTP(phone, "1234")

	_, err := f.svc.VerifyPatientOTP(context.Background(), VerifyOTPCommand{PhoneNumber: phone, Code: "0000"})
	if err == nil || err.Error() != "invalid or expired code" {
		t.Fatalf("wrong code should be rejected, got %v", err)
	}
}

func TestVerifyPatientOTPExpiredCode(t *testing.T) {
	f := newAuthFixture()
	phone := "+15550100123"
	_ = f.otps.Create(context.Background(), &models.OTPVerification{
		PhoneNumber: phone,
		Code:        "1234",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})

	_, err := f.svc.VerifyPatientOTP(context.Background(), VerifyOTPCommand{PhoneNumber: phone, Code: "1234"})
	if err == nil || err.Error() != "invalid or expired code" {
		t.Fatalf("expired code should be rejected, got %v", err)
	}
}

func TestVerifyPatientOTPExistingPatient(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	phone := "+15550100123"

	patient := &models.Patient{Name: "Asha", PhoneNumber: phone}
	_ = f.patients.Create(ctx, patient)

	f.seedOTP(phone, "1234")
	result, err := f.svc.VerifyPatientOTP(ctx, VerifyOTPCommand{PhoneNumber: phone, Code: "1234"})
	if err != nil {
		t.Fatalf("VerifyPatientOTP failed: %v", err)
	}
	if result.Actor.ID != patient.ID {
		t.Error("existing patient should log in, not a new record")
	}
	if !patient.IsVerified {
		t.Error("logging in should verify the patient")
	}
}

func TestDriverRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	result, err := f.svc.RegisterDriver(ctx, RegisterDriverCommand{
		Name:            "Ravi",
		Age:             29,
		LicenseNumber:   "KA-0042",
		AmbulanceNumber: "AMB-7",
		Password:        "ambulance99",
	})
	if err != nil {
		t.Fatalf("RegisterDriver failed: %v", err)
	}
	if result.Actor.Role != models.ActorRoleDriver {
		t.Errorf("actor role = %s, want driver", result.Actor.Role)
	}

	driver, _ := f.drivers.GetByLicenseNumber(ctx, "KA-0042")
	if driver.PasswordHash == "ambulance99" {
		t.Error("password must not be stored in the clear")
	}

	login, err := f.svc.LoginDriver(ctx, "KA-0042", "ambulance99")
	if err != nil {
		t.Fatalf("LoginDriver failed: %v", err)
	}
	if login.Actor.ID != driver.ID {
		t.Error("login should return the registered driver")
	}

	if _, err := f.svc.LoginDriver(ctx, "KA-0042", "wrong-pass"); err == nil || err.Error() != "invalid credentials" {
		t.Errorf("wrong password should be rejected, got %v", err)
	}
	if _, err := f.svc.LoginDriver(ctx, "NO-SUCH", "ambulance99"); err == nil || err.Error() != "invalid credentials" {
		t.Errorf("unknown license should be rejected, got %v", err)
	}
}

func TestRegisterDriverWeakPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.RegisterDriver(context.Background(), RegisterDriverCommand{
		Name:            "Ravi",
		Age:             29,
		LicenseNumber:   "KA-0042",
		AmbulanceNumber: "AMB-7",
		Password:        "short",
	})
	if err == nil {
		t.Fatal("weak password should be rejected")
	}
}

func TestHospitalRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	result, err := f.svc.RegisterHospital(ctx, RegisterHospitalCommand{
		Name:               "City General",
		RegistrationNumber: "REG-100",
		Password:           "hospital42",
		Latitude:           12.97,
		Longitude:          77.59,
	})
	if err != nil {
		t.Fatalf("RegisterHospital failed: %v", err)
	}
	if result.Actor.Role != models.ActorRoleHospital {
		t.Errorf("actor role = %s, want hospital", result.Actor.Role)
	}

	login, err := f.svc.LoginHospital(ctx, "REG-100", "hospital42")
	if err != nil {
		t.Fatalf("LoginHospital failed: %v", err)
	}
	if login.Actor.ID != result.Actor.ID {
		t.Error("login should return the registered hospital")
	}
}

func TestRegisterHospitalInvalidCoordinates(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.RegisterHospital(context.Background(), RegisterHospitalCommand{
		Name:               "City General",
		RegistrationNumber: "REG-100",
		Password:           "hospital42",
		Latitude:           123.0,
		Longitude:          77.59,
	})
	if !errors.Is(err, utils.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestRefreshTokens(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	result, err := f.svc.RegisterDriver(ctx, RegisterDriverCommand{
		Name:            "Ravi",
		Age:             29,
		LicenseNumber:   "KA-0042",
		AmbulanceNumber: "AMB-7",
		Password:        "ambulance99",
	})
	if err != nil {
		t.Fatalf("RegisterDriver failed: %v", err)
	}

	pair, err := f.svc.RefreshTokens(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens failed: %v", err)
	}
	claims, err := utils.ValidateToken(pair.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}
	if claims.ActorID != result.Actor.ID {
		t.Error("refreshed token should keep the same identity")
	}

	if _, err := f.svc.RefreshTokens(ctx, "not-a-token"); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Errorf("garbage refresh token should fail, got %v", err)
	}
}

func TestUpdatePushToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	driver := f.drivers.add(&models.AmbulanceDriver{Name: "Ravi"})
	err := f.svc.UpdatePushToken(ctx, models.Actor{ID: driver.ID, Role: models.ActorRoleDriver}, "fcm-token")
	if err != nil {
		t.Fatalf("UpdatePushToken failed: %v", err)
	}
	if driver.PushToken != "fcm-token" {
		t.Errorf("push token = %q, want fcm-token", driver.PushToken)
	}

	patient := models.Actor{ID: driver.ID, Role: models.ActorRolePatient}
	if err := f.svc.UpdatePushToken(ctx, patient, "fcm-token"); err == nil {
		t.Error("patients should not carry push tokens")
	}

	if err := f.svc.UpdatePushToken(ctx, models.Actor{}, "fcm-token"); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Errorf("anonymous update should fail, got %v", err)
	}
}
