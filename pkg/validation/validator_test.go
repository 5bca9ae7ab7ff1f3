package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
	Init(6)
}

type payload struct {
	Username string   `json:"username" binding:"required,min=3"`
	Password string   `json:"password" binding:"required,pwd"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Lat      *float64 `json:"lat" binding:"required,latitude_deg"`
}

func bind(body string) error {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var p payload
	return c.ShouldBindJSON(&p)
}

func TestToDetails(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{name: "empty body", body: "", want: map[string]string{"payload": "request body is required"}},
		{name: "syntax", body: "{", want: map[string]string{"payload": "invalid json"}},
		{name: "type", body: `{"username": 5}`, want: map[string]string{"username": "must be a string"}},
		{
			name: "tags use json names",
			body: `{"username":"ab","password":"12345","email":"nope","lat":91}`,
			want: map[string]string{
				"username": "must be at least 3 characters long",
				"password": "does not meet the password policy",
				"email":    "must be a valid email",
				"lat":      "must be between -90 and 90",
			},
		},
		{name: "missing pointer", body: `{"username":"abc","password":"123456"}`, want: map[string]string{"lat": "is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDetails(bind(tt.body)))
		})
	}
}

func TestToDetails_Valid(t *testing.T) {
	assert.NoError(t, bind(`{"username":"abc","password":"123456","lat":0}`))
	assert.Nil(t, ToDetails(nil))
}

func TestFirstMessage(t *testing.T) {
	assert.Equal(t, "invalid request", FirstMessage(nil))
	assert.Equal(t, "invalid json", FirstMessage(map[string]string{"payload": "invalid json"}))
	assert.Equal(t, "email must be a valid email", FirstMessage(map[string]string{
		"username": "is required",
		"email":    "must be a valid email",
	}))
}
