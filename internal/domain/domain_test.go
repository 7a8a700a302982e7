package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/campusbot/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. Tenant IDs.
// ---------------------------------------------------------------------------

func TestValidTenantID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{"ambit", true},
		{"bharatesh-bn005", true},
		{"c2", true},
		{"a", false},      // too short
		{"-ambit", false}, // leading dash
		{"Ambit", false},  // uppercase
		{"ambit college", false},
		{"ambit_college", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, domain.ValidTenantID(tt.id))
		})
	}
}

func TestTenant_Setting(t *testing.T) {
	t.Parallel()

	tenant := &domain.Tenant{Settings: map[string]any{
		domain.SettingSlackChannel: "C123",
		"empty":                    "",
		"number":                   42,
	}}

	got, ok := tenant.Setting(domain.SettingSlackChannel)
	assert.True(t, ok)
	assert.Equal(t, "C123", got)

	_, ok = tenant.Setting("empty")
	assert.False(t, ok)

	_, ok = tenant.Setting("number")
	assert.False(t, ok)

	_, ok = (&domain.Tenant{}).Setting("missing")
	assert.False(t, ok)
}

func TestTenant_Active(t *testing.T) {
	t.Parallel()

	assert.True(t, (&domain.Tenant{Status: domain.TenantStatusActive}).Active())
	assert.False(t, (&domain.Tenant{Status: domain.TenantStatusSuspended}).Active())
	assert.False(t, (&domain.Tenant{}).Active())
}

func TestTenant_CheckActive(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&domain.Tenant{Status: domain.TenantStatusActive}).CheckActive())
	assert.ErrorIs(t, (&domain.Tenant{Status: domain.TenantStatusSuspended}).CheckActive(), domain.ErrTenantSuspended)
}

// ---------------------------------------------------------------------------
// 2. Users.
// ---------------------------------------------------------------------------

func TestApprovalState_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.ApprovalPending.Valid())
	assert.True(t, domain.ApprovalApproved.Valid())
	assert.False(t, domain.ApprovalState("rejected").Valid())
}

func TestUser_Approved(t *testing.T) {
	t.Parallel()

	assert.False(t, (&domain.User{ApprovalState: domain.ApprovalPending}).Approved())
	assert.True(t, (&domain.User{ApprovalState: domain.ApprovalApproved}).Approved())
}

// ---------------------------------------------------------------------------
// 3. Q&A entries.
// ---------------------------------------------------------------------------

func TestSourceType_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.SourceManual.Valid())
	assert.True(t, domain.SourceDocumentExtract.Valid())
	assert.False(t, domain.SourceType("pdf").Valid())
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fee", domain.NormalizeKey("  FEE \n"))
	assert.Equal(t, "hostel timings", domain.NormalizeKey("Hostel Timings"))
	assert.Empty(t, domain.NormalizeKey("   "))
}

func TestQAEntry_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&domain.QAEntry{QuestionKey: "wifi", AnswerText: "ask the lab"}).Validate())
	assert.ErrorIs(t, (&domain.QAEntry{QuestionKey: "  ", AnswerText: "x"}).Validate(), domain.ErrBlankEntry)
	assert.ErrorIs(t, (&domain.QAEntry{QuestionKey: "wifi", AnswerText: "\t"}).Validate(), domain.ErrBlankEntry)
}
