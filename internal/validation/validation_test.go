package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret123", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Exactly Max Length", "1" + strings.Repeat("b", 127), false},
		{"Too Short", "abc1234", true},
		{"Too Long", "1" + strings.Repeat("b", 128), true},
		{"No Digit", "onlyletters", true},
		{"No Letter", "1234567890", true},
		{"Unicode Letters", "ångström9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user-123", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("u", 31), true},
		{"Exactly Max", strings.Repeat("u", 30), false},
		{"Illegal Chars", "user@123", true},
		{"Space", "user name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Subdomain", "test@mail.example.co.uk", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateBio(strings.Repeat("b", 500)))
	assert.Error(t, ValidateBio(strings.Repeat("b", 501)))

	assert.NoError(t, ValidateTitle("Hello"))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("t", 256)))

	assert.NoError(t, ValidateRating(1, 1, 5))
	assert.NoError(t, ValidateRating(5, 1, 5))
	assert.Error(t, ValidateRating(0, 1, 5))
	assert.Error(t, ValidateRating(6, 1, 5))
}

func TestValidateSpan(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name               string
		start, end, length int
		wantErr            bool
	}{
		{"Whole Body", 0, 10, 10, false},
		{"Inner", 2, 5, 10, false},
		{"Empty", 3, 3, 10, true},
		{"Reversed", 5, 2, 10, true},
		{"Negative", -1, 2, 10, true},
		{"Past End", 4, 11, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpan(tt.start, tt.end, tt.length)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
