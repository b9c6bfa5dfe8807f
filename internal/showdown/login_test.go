package showdown

import (
	"errors"
	"strings"
	"testing"
)

func TestParseLoginResponse(t *testing.T) {
	longAssertion := strings.Repeat("x", 120)

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "bare assertion",
			body: longAssertion,
			want: longAssertion,
		},
		{
			name: "json login success",
			body: `]{"actionsuccess":true,"assertion":"` + longAssertion + `","curuser":{"loggedin":true}}`,
			want: longAssertion,
		},
		{
			name:    "registered nick rejected",
			body:    ";",
			wantErr: ErrLoginRejected,
		},
		{
			name:    "json login failure",
			body:    `]{"actionsuccess":false,"assertion":"","extralongpaddingsoitclearstheminimumlengthcheck":1}`,
			wantErr: ErrLoginRejected,
		},
		{
			name:    "short garbage",
			body:    "huh",
			wantErr: ErrLoginMalformed,
		},
		{
			name:    "heavy load",
			body:    "The login server is under heavy load, please try again later",
			wantErr: ErrLoginOverloaded,
		},
		{
			name:    "cloudflare error page",
			body:    "<!DOCTYPE html>\n<html><body>error 522</body></html>",
			wantErr: ErrLoginServerError,
		},
		{
			name:    "broken json",
			body:    "]{this is not json but it is definitely long enough to pass}",
			wantErr: ErrLoginMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLoginResponse([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("assertion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginErrorRetryability(t *testing.T) {
	if !IsRetryableLoginError(ErrLoginOverloaded) {
		t.Error("overload must be retryable")
	}
	if !IsRetryableLoginError(ErrLoginServerError) {
		t.Error("error pages must be retryable")
	}
	if IsRetryableLoginError(ErrLoginRejected) {
		t.Error("rejection must not be retryable")
	}
	if IsRetryableLoginError(ErrLoginMalformed) {
		t.Error("malformed responses must not be retryable")
	}
}
