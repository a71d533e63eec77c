package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if err := ComparePassword(string(hash), "hunter2"); err != nil {
		t.Fatalf("matching password rejected: %v", err)
	}
	if err := ComparePassword(string(hash), "hunter3"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
