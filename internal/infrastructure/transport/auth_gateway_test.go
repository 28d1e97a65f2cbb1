package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

func newGateway(t *testing.T, h http.HandlerFunc) *AuthGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api", NewInterceptor(nil, newStore(t, ""), zerolog.Nop()), 0, zerolog.Nop())
	require.NoError(t, err)
	return NewAuthGateway(client)
}

func TestNewClient_RejectsRelativeBaseURL(t *testing.T) {
	_, err := NewClient("/api", nil, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestAuthGateway_Login(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.io", body["email"])
		assert.Equal(t, "pw", body["password"])
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"T1","user":{"id":7,"email":"a@x.io","type":"customer"}}`)
	})

	resp, err := gw.Login(context.Background(), "a@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.AccessToken)
	assert.Equal(t, domain.RoleCustomer, resp.User.Type)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestAuthGateway_LoginForwardsServerMessage(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"Account pending approval"}`)
	})

	_, err := gw.Login(context.Background(), "p@x.io", "pw")
	require.Error(t, err)
	assert.Equal(t, "Account pending approval", err.Error())
	assert.ErrorIs(t, err, domain.ErrAccountNotUsable)
}

func TestAuthGateway_RegisterMultipartCarriesFilesAndFields(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "pro@x.io", r.FormValue("email"))
		assert.Equal(t, "secret1", r.FormValue("password"))
		assert.Equal(t, "Pat", r.FormValue("name"))
		assert.Equal(t, "555", r.FormValue("phone"))
		assert.Equal(t, "professional", r.FormValue("type"))
		assert.Equal(t, "plumbing", r.FormValue("service_type"))
		assert.Equal(t, "5", r.FormValue("experience"))
		assert.Equal(t, "42.5", r.FormValue("charges"))

		for field, want := range map[string]string{"id_proof": "id.pdf", "certification": "cert.pdf"} {
			f, hdr, err := r.FormFile(field)
			require.NoError(t, err, field)
			assert.Equal(t, want, hdr.Filename)
			data, _ := io.ReadAll(f)
			f.Close()
			assert.NotEmpty(t, data)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"Please wait for admin approval","user":{"id":3,"email":"pro@x.io","type":"professional","status":"pending"}}`)
	})

	resp, err := gw.Register(context.Background(), domain.Registration{
		Email: "pro@x.io", Password: "secret1", Name: "Pat", Phone: "555",
		Type: domain.RoleProfessional, ServiceType: "plumbing", Experience: 5, Charges: 42.5,
		IDProof:       &domain.Attachment{Filename: "id.pdf", ContentType: "application/pdf", Data: []byte("%PDF-id")},
		Certification: &domain.Attachment{Filename: "cert.pdf", Data: []byte("%PDF-cert")},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.AccessToken)
	assert.Equal(t, "Please wait for admin approval", resp.Message)
	assert.Equal(t, domain.StatusPending, resp.User.Status)
}

func TestAuthGateway_RegisterJSONSendsNumbersAsText(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "560001", body["pincode"])
		assert.Equal(t, "customer", body["type"])
		assert.NotContains(t, body, "experience")
		assert.NotContains(t, body, "charges")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"access_token":"C1","user":{"id":1,"email":"c@x.io","type":"customer"}}`)
	})

	resp, err := gw.Register(context.Background(), domain.Registration{
		Email: "c@x.io", Password: "secret1", Name: "Cam", Phone: "1",
		Type: domain.RoleCustomer, Address: "1 Main St", Pincode: "560001",
	})
	require.NoError(t, err)
	assert.Equal(t, "C1", resp.AccessToken)
}

func TestRegistrationFields_ProfessionalAlwaysSendsExperience(t *testing.T) {
	fields := RegistrationFields(domain.Registration{Email: "p@x.io", Type: domain.RoleProfessional})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"email", "password", "name", "phone", "type", "experience"}, names)
	assert.Equal(t, "0", fields[len(fields)-1].Value)
}

func TestAuthGateway_RoleProfileAcceptsMixedTypes(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/professionals/profile", r.URL.Path)
		io.WriteString(w, `{"user":{"id":3,"email":"p@x.io","name":"Pat","type":"professional","status":"approved"},
			"service_type":"plumbing","experience":"5 years","charges":42.5,"pincode":null,"available":true}`)
	})

	ext, err := gw.RoleProfile(context.Background(), domain.RoleProfessional)
	require.NoError(t, err)
	assert.Equal(t, "5 years", ext.Experience)
	assert.Equal(t, 42.5, ext.Charges)
	assert.Empty(t, ext.Pincode)
	require.NotNil(t, ext.Available)
	assert.True(t, *ext.Available)
	assert.Equal(t, domain.StatusApproved, ext.User.Status)
}

func TestAuthGateway_RoleProfileRejectsAdmin(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	})

	_, err := gw.RoleProfile(context.Background(), domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestAuthGateway_ProfileInvalidBody(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>`)
	})

	_, err := gw.Profile(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerFault)
	assert.Equal(t, "Invalid response from server", err.Error())
}

func TestAuthGateway_UpdateRoleProfileBodies(t *testing.T) {
	var got map[string]any
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		got = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"message":"ok"}`)
	})

	charges := 30.0
	require.NoError(t, gw.UpdateRoleProfile(context.Background(), domain.RoleProfessional,
		domain.ProfileUpdate{ServiceType: "cleaning", Charges: &charges}))
	assert.Equal(t, "cleaning", got["service_type"])
	assert.Equal(t, 30.0, got["charges"])
	assert.NotContains(t, got, "available")

	require.NoError(t, gw.UpdateRoleProfile(context.Background(), domain.RoleCustomer,
		domain.ProfileUpdate{Address: "2 Elm", Pincode: "400001"}))
	assert.Equal(t, "2 Elm", got["address"])
	assert.Equal(t, "400001", got["pincode"])
}
