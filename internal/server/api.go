// Package server exposes check-ins, chat and the warden dashboard over
// HTTP and websocket.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/blumie/wellcheck/internal/chat"
	"github.com/blumie/wellcheck/internal/checkin"
	"github.com/blumie/wellcheck/internal/quiz"
	"github.com/blumie/wellcheck/internal/session"
	"github.com/blumie/wellcheck/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Chatter answers chat turns. *chat.Service satisfies it.
type Chatter interface {
	Reply(ctx context.Context, c chat.Conversation) (*chat.Reply, error)
}

// Params are the API's dependencies.
type Params struct {
	fx.In

	Logger      zerolog.Logger
	Checkin     *checkin.Service
	Chat        Chatter
	Issuer      *session.Issuer
	Submissions store.SubmissionRepo
	Events      store.EventRepo
	Hub         *Hub
}

// API holds the HTTP handlers.
type API struct {
	checkin     *checkin.Service
	chat        Chatter
	issuer      *session.Issuer
	submissions store.SubmissionRepo
	events      store.EventRepo
	hub         *Hub
	logger      zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewAPI creates the handlers.
func NewAPI(p Params) *API {
	return &API{
		checkin:     p.Checkin,
		chat:        p.Chat,
		issuer:      p.Issuer,
		submissions: p.Submissions,
		events:      p.Events,
		hub:         p.Hub,
		logger:      p.Logger.With().Str("component", "api").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts every route on r.
func (a *API) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/session", a.createSession)
		v1.GET("/quiz", a.getQuiz)
		v1.GET("/colors", a.getColors)

		student := v1.Group("", a.authenticate(session.RoleStudent))
		student.POST("/moods", a.submitMood)
		student.POST("/moods/:id/answers", a.submitAnswers)
		student.POST("/chat", a.chatReply)

		warden := v1.Group("", a.authenticate(session.RoleWarden))
		warden.GET("/submissions", a.listSubmissions)
		warden.GET("/submissions/:id", a.getSubmission)
		warden.POST("/submissions/:id/reassess", a.reassess)
		warden.GET("/alerts", a.listAlerts)
	}

	r.GET("/ws/dashboard", a.authenticate(session.RoleWarden), a.dashboard)
}

// authenticate parses the bearer token (or the token query parameter,
// for websocket clients) and requires one of roles.
func (a *API) authenticate(roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
				return
			}
			token = parts[1]
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authorization required"})
			return
		}

		sess, err := a.issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
			return
		}

		allowed := false
		for _, r := range roles {
			if sess.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "requires role " + string(roles[0])})
			return
		}

		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	sess, _ := session.FromContext(c.Request.Context())
	return sess
}

type sessionRequest struct {
	Name string       `json:"name" binding:"required"`
	Role session.Role `json:"role" binding:"required,oneof=student warden"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	Name  string       `json:"name"`
	Role  session.Role `json:"role"`
}

func (a *API) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess := session.Session{Name: strings.TrimSpace(req.Name), Role: req.Role}
	token, err := a.issuer.Issue(sess)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, Name: sess.Name, Role: sess.Role})
}

func (a *API) getQuiz(c *gin.Context) {
	c.JSON(http.StatusOK, quiz.Bank)
}

func (a *API) getColors(c *gin.Context) {
	c.JSON(http.StatusOK, checkin.Palette)
}

func (a *API) submitMood(c *gin.Context) {
	var in checkin.MoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := a.checkin.SubmitMood(c.Request.Context(), currentSession(c), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (a *API) submitAnswers(c *gin.Context) {
	var answers quiz.AnswerSet
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := a.checkin.SubmitAnswers(c.Request.Context(), currentSession(c), c.Param("id"), answers)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sub)
}

func (a *API) chatReply(c *gin.Context) {
	var conv chat.Conversation
	if err := c.ShouldBindJSON(&conv); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := a.chat.Reply(c.Request.Context(), conv)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (a *API) listSubmissions(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	subs, err := a.submissions.List(c.Request.Context(), limit)
	if err != nil {
		a.fail(c, err)
		return
	}
	if subs == nil {
		subs = []store.Submission{}
	}
	c.JSON(http.StatusOK, subs)
}

func (a *API) getSubmission(c *gin.Context) {
	sub, err := a.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (a *API) reassess(c *gin.Context) {
	sub, err := a.checkin.Reassess(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type alertResponse struct {
	Sequence  int64  `json:"sequence"`
	Timestamp string `json:"timestamp"`
	Student   string `json:"student"`
	Recipient string `json:"recipient"`
	Outcome   string `json:"outcome"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (a *API) listAlerts(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	recs, err := a.events.QueryAlerts(c.Request.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		a.fail(c, err)
		return
	}

	out := make([]alertResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, alertResponse{
			Sequence:  r.Sequence,
			Timestamp: r.Timestamp.Format(time.RFC3339),
			Student:   r.Student,
			Recipient: r.Recipient,
			Outcome:   r.Outcome,
			MessageID: r.MessageID,
			Error:     r.ErrorMessage,
		})
	}
	c.JSON(http.StatusOK, out)
}

// dashboard upgrades to a websocket, sends the latest submissions and
// then streams every update until the client goes away.
func (a *API) dashboard(c *gin.Context) {
	subs, err := a.submissions.List(c.Request.Context(), defaultListLimit)
	if err != nil {
		a.fail(c, err)
		return
	}

	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	if err := a.hub.Add(conn, Message{Type: "snapshot", Submissions: subs}); err != nil {
		conn.Close()
		return
	}
	defer a.hub.Remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &limitError{raw: raw}
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

type limitError struct{ raw string }

func (e *limitError) Error() string { return "invalid limit " + strconv.Quote(e.raw) }
