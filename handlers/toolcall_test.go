package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"casamar/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeArchive struct {
	bookings []models.BookingRecord
	err      error
}

func (f *fakeArchive) SaveBooking(ctx context.Context, record models.BookingRecord) (string, error) {
	return "rec-1", nil
}

func (f *fakeArchive) GetBookingByGuest(ctx context.Context, guestID string) ([]models.BookingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings, nil
}

func (f *fakeArchive) SaveEscalation(ctx context.Context, record models.EscalationRecord) (string, error) {
	return "esc-1", nil
}

func bookingsRouter(archive *fakeArchive) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewToolHandler(nil, nil, archive, zap.NewNop())
	router := gin.New()
	router.GET("/bookings/:guestId", h.GetBookings)
	return router
}

func TestGetBookingsReturnsGuestHistory(t *testing.T) {
	archive := &fakeArchive{bookings: []models.BookingRecord{
		{ReservationRef: "R-900", RoomNumbers: []string{"11", "12"}},
	}}
	router := bookingsRouter(archive)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings/guest-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guestId":"guest-1"`)
	assert.Contains(t, w.Body.String(), "R-900")
}

func TestGetBookingsLookupFailure(t *testing.T) {
	router := bookingsRouter(&fakeArchive{err: errors.New("mongo down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings/guest-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
