package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/testutil"
)

func TestSupportEndpoints(t *testing.T) {
	s := newTestServer(t)
	userToken, adminToken := s.token(t, s.user), s.token(t, s.admin)
	stranger := testutil.CreateProfile(t, s.db, models.Profile{})

	w := s.do(t, http.MethodPost, "/api/conversations", gin.H{"subject": "Withdrawal delay", "content": "Where is my payout?"}, userToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opened struct {
		Conversation models.Conversation `json:"conversation"`
		Message      models.Message      `json:"message"`
	}
	decodeJSON(t, w, &opened)
	base := "/api/conversations/" + opened.Conversation.ID.String() + "/messages"
	adminBase := "/api/admin/conversations/" + opened.Conversation.ID.String()

	w = s.do(t, http.MethodPost, adminBase+"/messages", gin.H{"content": "Processing now"}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var reply models.Message
	decodeJSON(t, w, &reply)
	assert.Equal(t, models.RoleAdmin, reply.SenderRole)

	w = s.do(t, http.MethodGet, base, nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	var thread []models.Message
	decodeJSON(t, w, &thread)
	assert.Len(t, thread, 2)

	since := url.QueryEscape(opened.Message.CreatedAt.Format(time.RFC3339Nano))
	w = s.do(t, http.MethodGet, base+"?since="+since, nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, reply.ID, thread[0].ID)

	w = s.do(t, http.MethodGet, base+"?since=yesterday", nil, userToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, base, nil, s.token(t, stranger))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/conversations?status=open", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Withdrawal delay")

	w = s.do(t, http.MethodPost, adminBase+"/close", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base, gin.H{"content": "hello?"}, userToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/conversations", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
