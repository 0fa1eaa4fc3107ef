package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/friendship"
	"github.com/trezcool/ratiba/core/user"
	testutil "github.com/trezcool/ratiba/tests"
)

func Test_friendshipApi_flow(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice1", "alice@test.cd", "", nil, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bobby1", "bob@test.cd", "", nil, true)
	carol := testutil.CreateUser(t, usrRepo, "Carol", "carol1", "carol@test.cd", "", nil, true)
	aliceToken := getToken(t, alice)
	bobToken := getToken(t, bob)

	// no befriending yourself
	req, rec := newAuthRequest(http.MethodPost, "/v1/friends/requests", aliceToken,
		marchallObj(t, map[string]string{"to_user_id": alice.ID}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// send
	req, rec = newAuthRequest(http.MethodPost, "/v1/friends/requests", aliceToken,
		marchallObj(t, map[string]string{"to_user_id": bob.ID}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var fr friendship.FriendRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fr))
	assert.Equal(t, friendship.StatusPending, fr.Status)

	// no duplicates, in either direction
	req, rec = newAuthRequest(http.MethodPost, "/v1/friends/requests", bobToken,
		marchallObj(t, map[string]string{"to_user_id": alice.ID}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// bob sees it pending; alice does not
	req, rec = newAuthRequest(http.MethodGet, "/v1/friends/requests", bobToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var reqs []friendship.FriendRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reqs))
	require.Len(t, reqs, 1)

	req, rec = newAuthRequest(http.MethodGet, "/v1/friends/requests", aliceToken)
	app.ServeHTTP(rec, req)
	assert.JSONEq(t, "[]", rec.Body.String())

	// only the recipient can respond
	req, rec = newAuthRequest(http.MethodPost, "/v1/friends/requests/"+fr.ID+"/accept", aliceToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// accept links both ways and notifies the requester
	req, rec = newAuthRequest(http.MethodPost, "/v1/friends/requests/"+fr.ID+"/accept", bobToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	notifs, err := notifSvc.Query(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "bobby1 accepted your friend request", notifs[0].Message)

	for _, token := range []string{aliceToken, bobToken} {
		req, rec = newAuthRequest(http.MethodGet, "/v1/friends", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var friends []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
		require.Len(t, friends, 1)
	}

	// suggestions exclude self, friends and anyone with a request either way
	req, rec = newAuthRequest(http.MethodGet, "/v1/friends/suggestions", aliceToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var suggestions []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, carol.ID, suggestions[0].ID)
}
