package constants

import "testing"

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("PHOTODB_TEST_STRING", "value")
	t.Setenv("PHOTODB_TEST_INT", "42")
	t.Setenv("PHOTODB_TEST_BAD_INT", "forty-two")
	t.Setenv("PHOTODB_TEST_FLOAT", "2.5")

	if got := getEnv("PHOTODB_TEST_STRING", "default"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
	if got := getEnv("PHOTODB_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv unset = %q, want default", got)
	}
	if got := getEnvAsInt("PHOTODB_TEST_INT", 1); got != 42 {
		t.Errorf("getEnvAsInt = %d, want 42", got)
	}
	if got := getEnvAsInt("PHOTODB_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvAsInt with bad value = %d, want 1", got)
	}
	if got := getEnvAsFloat("PHOTODB_TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("getEnvAsFloat = %v, want 2.5", got)
	}
	if got := getEnvAsFloat("PHOTODB_TEST_UNSET", 1.5); got != 1.5 {
		t.Errorf("getEnvAsFloat unset = %v, want 1.5", got)
	}
}
