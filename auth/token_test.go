package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alekreuaya/lucky-naga/model"
)

func TestSignAndVerify(t *testing.T) {
	a := assert.New(t)
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.Sign("master", model.RoleMaster)
	a.NoError(err)

	claims, err := manager.Verify(token)
	a.NoError(err)
	a.Equal("master", claims.Username)
	a.Equal(model.RoleMaster, claims.Role)
}

func TestVerifyExpired(t *testing.T) {
	a := assert.New(t)
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.Sign("admin1", model.RoleAdmin)
	a.NoError(err)

	_, err = manager.Verify(token)
	a.ErrorIs(err, ErrTokenExpired)
}

func TestVerifyTampered(t *testing.T) {
	a := assert.New(t)
	manager := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	token, err := other.Sign("admin1", model.RoleAdmin)
	a.NoError(err)

	_, err = manager.Verify(token)
	a.ErrorIs(err, ErrTokenInvalid)

	_, err = manager.Verify("not.a.token")
	a.ErrorIs(err, ErrTokenInvalid)

	_, err = manager.Verify("")
	a.ErrorIs(err, ErrTokenInvalid)
}

func TestRoleAllows(t *testing.T) {
	a := assert.New(t)
	a.True(model.RoleMaster.Allows(model.RoleAdmin))
	a.True(model.RoleMaster.Allows(model.RoleMaster))
	a.True(model.RoleAdmin.Allows(model.RoleAdmin))
	a.False(model.RoleAdmin.Allows(model.RoleMaster))
}

func TestStatusFor(t *testing.T) {
	a := assert.New(t)
	a.Equal(403, StatusFor(ErrNotAuthorized))
	a.Equal(401, StatusFor(ErrTokenExpired))
	a.Equal(401, StatusFor(ErrTokenInvalid))
}
