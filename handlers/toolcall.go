package handlers

import (
	"net/http"
	"time"

	recordsRepo "casamar/database/repository/records"
	"casamar/models"
	"casamar/services/booking"
	"casamar/services/recovery"
	"casamar/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolHandler serves the structured tool calls coming from the
// conversational-AI layer.
type ToolHandler struct {
	Booking  booking.TransactionService
	Recovery *recovery.Machine
	Archive  recordsRepo.ArchiveRepository
	Logger   *zap.Logger
}

func NewToolHandler(bookingSvc booking.TransactionService, machine *recovery.Machine, archive recordsRepo.ArchiveRepository, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{Booking: bookingSvc, Recovery: machine, Archive: archive, Logger: logger}
}

// ReserveRooms executes one booking transaction for a guest. The response
// message is always safe to relay to the guest verbatim; a pending
// response means the final outcome arrives asynchronously.
func (h *ToolHandler) ReserveRooms(c *gin.Context) {
	var call models.ReserveRoomsCall
	if err := c.ShouldBindJSON(&call); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tool call", err.Error())
		return
	}

	ctx := c.Request.Context()
	acquired, err := utils.AcquireBookingGuard(ctx, call.GuestID, 2*time.Minute)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to acquire booking guard", err.Error())
		return
	}
	if !acquired {
		c.JSON(http.StatusConflict, models.ToolCallResponse{
			Success: false,
			Message: "We are already processing a booking for you. Please wait a moment.",
		})
		return
	}
	defer utils.ReleaseBookingGuard(ctx, call.GuestID)

	if pending, pendErr := h.Recovery.Pending(ctx, call.GuestID); pendErr != nil {
		h.Logger.Warn("failed to check pending recovery state",
			zap.String("guestId", call.GuestID), zap.Error(pendErr))
	} else if pending {
		c.JSON(http.StatusConflict, models.ToolCallResponse{
			Success: false,
			Pending: true,
			Message: "We are still working on your previous booking. We will update you as soon as it is confirmed.",
		})
		return
	}

	tx := transactionFromCall(call)
	result, err := h.Booking.Execute(ctx, tx)
	if err == nil {
		c.JSON(http.StatusOK, models.ToolCallResponse{
			Success:        true,
			Message:        result.Message,
			ReservationRef: result.ReservationRef,
			RoomNumbers:    result.RoomNumbers,
		})
		return
	}

	if booking.Retryable(err) {
		h.Logger.Info("transaction deferred to recovery",
			zap.String("guestId", call.GuestID), zap.Error(err))
		if beginErr := h.Recovery.Begin(ctx, tx); beginErr != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to start payment recovery", beginErr.Error())
			return
		}
		c.JSON(http.StatusAccepted, models.ToolCallResponse{
			Success: false,
			Pending: true,
			Message: "We are processing your payment. We will confirm your booking shortly.",
		})
		return
	}

	h.Logger.Warn("transaction rejected",
		zap.String("guestId", call.GuestID), zap.Error(err))
	c.JSON(http.StatusOK, models.ToolCallResponse{
		Success: false,
		Message: booking.CustomerMessage(err),
	})
}

// GetBookings returns the guest's archived bookings, so the
// conversational-AI layer can answer questions about past reservations.
func (h *ToolHandler) GetBookings(c *gin.Context) {
	guestID := c.Param("guestId")
	records, err := h.Archive.GetBookingByGuest(c.Request.Context(), guestID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to look up bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"guestId": guestID, "bookings": records})
}

func transactionFromCall(call models.ReserveRoomsCall) models.BookingTransaction {
	return models.BookingTransaction{
		GuestID:       call.GuestID,
		FirstName:     call.FirstName,
		LastName:      call.LastName,
		Email:         call.Email,
		Phone:         call.Phone,
		CheckIn:       call.CheckIn,
		CheckOut:      call.CheckOut,
		Rooms:         call.Rooms,
		PaymentMethod: call.PaymentMethod,
		PaymentID:     call.PaymentID,
		TotalAmount:   call.TotalAmount,
	}
}
