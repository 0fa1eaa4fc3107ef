package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/user"
	emailsvc "github.com/trezcool/ratiba/services/email"
	testutil "github.com/trezcool/ratiba/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Dilo", "jdilo", "jdilo@test.cd", "LePassword007", nil, true)
	testutil.CreateUser(t, usrRepo, "Sleepy Jo", "sleepy", "jo@test.cd", "LePassword007", nil, false)

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/login",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, map[string]string{"username": "who", "password": "dis"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, map[string]string{"username": usr.Username, "password": "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, map[string]string{"username": "sleepy", "password": "LePassword007"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// happy path returns a usable token
	req, rec := newRequest(http.MethodPost, "/v1/users/login",
		marchallObj(t, map[string]string{"username": usr.Username, "password": "LePassword007"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)

	req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, res.Token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, map[string]interface{}{
		"name":             "New Kid",
		"username":         "newkid",
		"email":            "kid@test.cd",
		"password":         "LePassword@007",
		"password_confirm": "LePassword@007",
		"roles":            []string{user.RoleAdmin}, // ignored: signups are students
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var usr user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
	assert.True(t, usr.IsActive)

	// duplicate username rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/register", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "get all", path: "/v1/users", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, student, admin),
		},
		{
			name: "search", path: "/v1/users?" + url.Values{"search": {"hero"}}.Encode(), token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, student),
		},
		{
			name: "role filter", path: "/v1/users?" + url.Values{"role": {user.RoleAdmin}}.Encode(), token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_passwordResetFlow(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Dilo", "jdilo", "jdilo@test.cd", "OldPassword007", nil, true)

	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset",
		marchallObj(t, map[string]string{"email": usr.Email}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, emailsvc.SentMessages, 1)

	// pull uid & token out of the reset link
	re := regexp.MustCompile(`uid=([^&\s]+)&token=([^&\s]+)`)
	match := re.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	require.Len(t, match, 3)
	uid, token := match[1], match[2]

	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
		marchallObj(t, map[string]string{
			"uid":              uid,
			"token":            token,
			"password":         "NewPassword@007",
			"password_confirm": "NewPassword@007",
		}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// token is single-use: the password hash changed
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
		marchallObj(t, map[string]string{
			"uid":              uid,
			"token":            token,
			"password":         "OtherPassword@007",
			"password_confirm": "OtherPassword@007",
		}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// old password no longer works
	req, rec = newRequest(http.MethodPost, "/v1/users/login",
		marchallObj(t, map[string]string{"username": usr.Username, "password": "OldPassword007"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// new one does
	req, rec = newRequest(http.MethodPost, "/v1/users/login",
		marchallObj(t, map[string]string{"username": usr.Username, "password": "NewPassword@007"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
