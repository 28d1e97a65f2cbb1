package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalNumericFields(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":4,"email":"p@x.io","type":"professional","experience":7,"pincode":560001,"status":"approved"}`), &u)
	require.NoError(t, err)
	assert.Equal(t, "7", u.Experience)
	assert.Equal(t, "560001", u.Pincode)
	assert.Equal(t, RoleProfessional, u.Type)
	assert.Equal(t, StatusApproved, u.Status)

	err = json.Unmarshal([]byte(`{"id":5,"email":"c@x.io","type":"customer","experience":null,"pincode":"A1"}`), &u)
	require.NoError(t, err)
	assert.Empty(t, u.Experience)
	assert.Equal(t, "A1", u.Pincode)
}

func TestProfileExtension_MergeKeepsIdentity(t *testing.T) {
	base := &User{ID: 1, Email: "c@x.io", Name: "Old", Type: RoleCustomer}
	ext := &ProfileExtension{
		User:    &User{ID: 99, Email: "other@x.io", Name: "New"},
		Address: "1 Main", Pincode: "560001",
		ServiceType: "ignored for customers",
	}

	merged := ext.Merge(base)
	assert.Equal(t, int64(1), merged.ID)
	assert.Equal(t, "c@x.io", merged.Email)
	assert.Equal(t, "New", merged.Name)
	assert.Equal(t, "1 Main", merged.Address)
	assert.Empty(t, merged.ServiceType)
	assert.Equal(t, "Old", base.Name, "base must not be mutated")
}

func TestProfileExtension_MergeProfessional(t *testing.T) {
	avail := true
	base := &User{ID: 2, Type: RoleProfessional, Status: StatusPending}
	ext := &ProfileExtension{
		User:        &User{Status: StatusApproved},
		ServiceType: "plumbing", Experience: "5", Charges: 40, Available: &avail,
	}

	merged := ext.Merge(base)
	assert.Equal(t, StatusApproved, merged.Status)
	assert.Equal(t, "plumbing", merged.ServiceType)
	require.NotNil(t, merged.Available)
	avail = false
	assert.True(t, *merged.Available, "merge must copy the pointer target")
}

func TestDeriveSession(t *testing.T) {
	u := &User{Type: RoleAdmin}
	assert.Equal(t, SessionState{Kind: SessionUnauthenticated}, DeriveSession(false, u, false))
	assert.Equal(t, SessionState{Kind: SessionInvalid}, DeriveSession(true, u, true))
	assert.Equal(t, SessionState{Kind: SessionBootstrapping}, DeriveSession(true, nil, false))
	assert.Equal(t, SessionState{Kind: SessionAuthenticated, Role: RoleAdmin}, DeriveSession(true, u, false))
}
