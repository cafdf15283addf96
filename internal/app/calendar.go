package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"barbershop-service/internal/config"
)

// CalendarSync mirrors new bookings into a Google Calendar. It is optional:
// without OAuth2 credentials the service runs with Calendar == nil and the
// creation flow skips the sync.
type CalendarSync struct {
	Config     *oauth2.Config
	CalendarID string

	mu    sync.Mutex
	token *oauth2.Token
}

// NewCalendarSync builds the sync from app config, or nil when the Google
// OAuth2 credentials are not configured.
func NewCalendarSync() *CalendarSync {
	cfg := config.AppConfig
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return nil
	}
	return &CalendarSync{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				calendar.CalendarEventsScope,
			},
			Endpoint: google.Endpoint,
		},
		CalendarID: cfg.GoogleCalendarID,
	}
}

func (cs *CalendarSync) setToken(tok *oauth2.Token) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.token = tok
}

func (cs *CalendarSync) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.token == nil {
		return nil, fmt.Errorf("calendar not connected")
	}
	return cs.Config.TokenSource(ctx, cs.token), nil
}

// InsertBookingEvent creates a one-hour calendar event for the booking.
func (cs *CalendarSync) InsertBookingEvent(ctx context.Context, b *Booking, service *BarberShopService) error {
	ts, err := cs.tokenSource(ctx)
	if err != nil {
		return err
	}
	srv, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return err
	}

	event := &calendar.Event{
		Summary:     service.Name,
		Description: fmt.Sprintf("Booking %s", b.ID),
		Start: &calendar.EventDateTime{
			DateTime: b.Date.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: b.Date.Add(time.Hour).Format(time.RFC3339),
		},
	}
	_, err = srv.Events.Insert(cs.CalendarID, event).Context(ctx).Do()
	return err
}

// GET /api/calendar/auth
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	state := fmt.Sprintf("shop_%d", time.Now().Unix())
	url := a.Calendar.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{
		"auth_url": url,
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	tok, err := a.Calendar.Config.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token exchange failed"})
		return
	}
	a.Calendar.setToken(tok)
	c.JSON(http.StatusOK, gin.H{"connected": true})
}
