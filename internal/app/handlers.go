package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"barbershop-service/internal/metrics"
)

const dayLayout = "2006-01-02"

// GET /api/barbershops?search=
func (a *App) ListBarberShopsHandler(c *gin.Context) {
	search := c.Query("search")
	ctx := c.Request.Context()

	// only the unfiltered listing is cached
	if search == "" {
		if data, ok := a.Views.Get(ctx, ViewBarberShops); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}

	shops, err := a.Store.ListBarberShops(ctx, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list barbershops"})
		return
	}
	if shops == nil {
		shops = []BarberShop{}
	}

	if search == "" {
		if data, err := json.Marshal(shops); err == nil {
			a.Views.Set(ctx, ViewBarberShops, data)
		}
	}
	c.JSON(http.StatusOK, shops)
}

// GET /api/barbershops/:id
func (a *App) GetBarberShopHandler(c *gin.Context) {
	shop, err := a.Store.GetBarberShop(c.Request.Context(), c.Param("id"))
	if err == ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "barbershop not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load barbershop"})
		return
	}
	c.JSON(http.StatusOK, shop)
}

// GET /api/barbershops/:id/services
func (a *App) ListShopServicesHandler(c *gin.Context) {
	services, err := a.Store.ListShopServices(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	if services == nil {
		services = []BarberShopService{}
	}
	c.JSON(http.StatusOK, services)
}

// GET /api/services/:id/slots?day=YYYY-MM-DD
//
// An empty slots list is a normal answer ("no slots available for this
// day"), never an error.
func (a *App) GetSlotsHandler(c *gin.Context) {
	serviceID := c.Param("id")
	dayStr := c.Query("day")
	if dayStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day required (YYYY-MM-DD)"})
		return
	}
	day, err := time.ParseInLocation(dayLayout, dayStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return
	}

	ctx := c.Request.Context()
	if _, err := a.Store.GetService(ctx, serviceID); err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load service"})
		return
	}

	bookings, err := a.Store.ListServiceBookings(ctx, serviceID, day, day.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	slots, err := AvailableSlots(TimeList, day, bookings, a.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute slots"})
		return
	}
	metrics.IncSlotQuery()

	c.JSON(http.StatusOK, gin.H{"day": dayStr, "slots": slots})
}

type createBookingReq struct {
	ServiceID string `json:"service_id" binding:"required"`
	DateStr   string `json:"date" binding:"required"` // RFC3339
	FlowID    string `json:"flow_id,omitempty"`
}

// POST /api/bookings
//
// The user id comes from the session, never from the request body. There is
// no re-check that the slot is still free: the UI only offers slots the
// availability filter returned, and two concurrent confirmations of the same
// slot can both land (see DESIGN.md).
func (a *App) CreateBookingHandler(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		metrics.IncBookingCreated("unauthenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
		return
	}

	var req createBookingReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(time.RFC3339, req.DateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	ctx := c.Request.Context()
	service, err := a.Store.GetService(ctx, req.ServiceID)
	if err == ErrNotFound {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service not found"})
		return
	}
	if err != nil {
		metrics.IncBookingCreated("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load service"})
		return
	}

	booking := &Booking{
		ID:        uuid.NewString(),
		ServiceID: service.ID,
		UserID:    userID,
		Date:      date,
	}
	if err := a.Store.InsertBooking(ctx, booking); err != nil {
		metrics.IncBookingCreated("error")
		a.logger().Error("booking insert failed",
			zap.String("service_id", service.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}
	metrics.IncBookingCreated("created")
	a.logger().Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("service_id", service.ID),
		zap.Time("date", booking.Date))

	// downstream signals are best-effort; the booking is already committed
	a.Views.Invalidate(ctx, ViewBarberShops, ViewShop(service.BarberShopID), ViewUserBookings(userID))
	if a.Calendar != nil {
		if err := a.Calendar.InsertBookingEvent(ctx, booking, service); err != nil {
			a.logger().Warn("calendar sync failed", zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}
	if req.FlowID != "" && a.Flows != nil {
		if f := a.Flows.Get(req.FlowID); f != nil {
			if next, err := Apply(f.State, ActionConfirm, true); err == nil {
				f.State = next
				a.Flows.Delete(f.ID)
			}
		}
	}

	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings?relation=upcoming|past
func (a *App) ListBookingsHandler(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
		return
	}

	rel := Relation(c.DefaultQuery("relation", string(RelationUpcoming)))
	if rel != RelationUpcoming && rel != RelationPast {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relation must be upcoming or past"})
		return
	}

	bookings, err := a.Store.ListUserBookings(c.Request.Context(), userID, rel, a.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	if bookings == nil {
		bookings = []BookingDetail{}
	}
	c.JSON(http.StatusOK, bookings)
}

type flowOpenReq struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// POST /api/booking-flow/open
//
// Starts a booking dialog for a service. Without a session the flow lands in
// the sign-in prompt, mirroring the original sign-in dialog.
func (a *App) OpenFlowHandler(c *gin.Context) {
	var req flowOpenReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, sessionPresent := CurrentUserID(c)

	state, err := Apply(StateClosed, ActionOpen, sessionPresent)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	flow := &Flow{
		ID:        uuid.NewString(),
		State:     state,
		ServiceID: req.ServiceID,
	}
	a.Flows.Put(flow)
	c.JSON(http.StatusCreated, flow)
}

type flowSelectReq struct {
	FlowID string `json:"flow_id" binding:"required"`
	DayStr string `json:"day" binding:"required"` // YYYY-MM-DD
	Slot   string `json:"slot" binding:"required"`
}

// POST /api/booking-flow/select
func (a *App) SelectSlotHandler(c *gin.Context) {
	var req flowSelectReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := time.ParseInLocation(dayLayout, req.DayStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return
	}
	if _, err := SlotDate(day, req.Slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	flow := a.Flows.Get(req.FlowID)
	if flow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
		return
	}
	_, sessionPresent := CurrentUserID(c)

	state := flow.State
	if state == StateSignInPrompt && sessionPresent {
		// user signed in while the prompt was open
		state, _ = Apply(state, ActionSignIn, true)
	}
	next, err := Apply(state, ActionSelect, sessionPresent)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	flow.State = next
	flow.Day = day
	flow.Slot = req.Slot
	a.Flows.Put(flow)
	c.JSON(http.StatusOK, flow)
}

type flowCloseReq struct {
	FlowID string `json:"flow_id" binding:"required"`
}

// POST /api/booking-flow/close
func (a *App) CloseFlowHandler(c *gin.Context) {
	var req flowCloseReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if flow := a.Flows.Get(req.FlowID); flow != nil {
		a.Flows.Delete(flow.ID)
	}
	c.JSON(http.StatusOK, gin.H{"state": StateClosed})
}
