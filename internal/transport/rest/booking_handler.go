package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/stadium-booking/internal/page"
	"github.com/courtside-dev/stadium-booking/internal/service"
)

// GET /booking/all?page=1&page_size=20
func (h *Handler) FindAll(c *gin.Context) {
	bookings, err := h.bookings.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(page.DefaultPageSize)))
	p := page.Paginate(newBookingResponses(bookings), pageNum, size)

	c.JSON(http.StatusOK, gin.H{
		"items":     p.Items,
		"page":      p.Page,
		"page_size": p.PageSize,
		"total":     p.Total,
		"has_next":  p.HasNext,
	})
}

// GET /booking/court/:courtId
func (h *Handler) FindByCourt(c *gin.Context) {
	courtID, ok := pathUUID(c, "courtId")
	if !ok {
		return
	}
	bookings, err := h.bookings.FindByCourt(c.Request.Context(), courtID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// GET /booking/id/:bookingId
func (h *Handler) FindByID(c *gin.Context) {
	id, ok := pathUUID(c, "bookingId")
	if !ok {
		return
	}
	b, err := h.bookings.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// GET /booking/user/:userId
func (h *Handler) FindByUser(c *gin.Context) {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	bookings, err := h.bookings.FindByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// GET /booking/bill/:billId
func (h *Handler) FindByBill(c *gin.Context) {
	billID, ok := pathUUID(c, "billId")
	if !ok {
		return
	}
	bookings, err := h.bookings.FindByBill(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// GET /booking — брони текущей недели
func (h *Handler) FindCurrentWeek(c *gin.Context) {
	bookings, err := h.bookings.FindCurrentWeek(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// POST /booking — пакетное оформление вызывающего
func (h *Handler) Book(c *gin.Context) {
	var bodies []bookingBody
	if err := c.ShouldBindJSON(&bodies); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := callerIdentity(c)
	ins := make([]service.BookingInput, len(bodies))
	for i, b := range bodies {
		ins[i] = service.BookingInput{
			CourtID:  b.CourtID,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
		}
	}

	bookings, err := h.bookings.CreateBatch(c.Request.Context(), caller.UserID, ins)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = newBookingResponse(b)
	}
	c.JSON(http.StatusCreated, out)
}

// POST /booking/admin — оформление на произвольных пользователей
func (h *Handler) BookAdmin(c *gin.Context) {
	var bodies []bookingBody
	if err := c.ShouldBindJSON(&bodies); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := callerIdentity(c)
	ins := make([]service.BookingInput, len(bodies))
	for i, b := range bodies {
		userID := caller.UserID
		if b.UserID != nil {
			userID = *b.UserID
		}
		ins[i] = service.BookingInput{
			CourtID:  b.CourtID,
			UserID:   userID,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
		}
	}

	bookings, err := h.bookings.CreateBatchAdmin(c.Request.Context(), caller.UserID, ins)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = newBookingResponse(b)
	}
	c.JSON(http.StatusCreated, out)
}

// PATCH /booking/:bookingId
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "bookingId")
	if !ok {
		return
	}
	var body updateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.bookings.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.identity.CheckOwner(callerIdentity(c), current); err != nil {
		writeError(c, err)
		return
	}

	b, err := h.bookings.Update(c.Request.Context(), id, service.BookingUpdate{
		CourtID:  body.CourtID,
		StartsAt: body.StartsAt,
		EndsAt:   body.EndsAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// PATCH /booking/approve/:bookingId
func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathUUID(c, "bookingId")
	if !ok {
		return
	}
	var body approveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.bookings.Approve(c.Request.Context(), id, *body.Approve)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// PATCH /booking/slip/:bookingId — загрузка слипа, перевод в PAID
func (h *Handler) UploadSlip(c *gin.Context) {
	id, ok := pathUUID(c, "bookingId")
	if !ok {
		return
	}

	current, err := h.bookings.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.identity.CheckOwner(callerIdentity(c), current); err != nil {
		writeError(c, err)
		return
	}

	file, err := c.FormFile("slip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slip file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read slip file"})
		return
	}
	defer src.Close()

	ref, err := h.slips.Save(file.Filename, src)
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.bookings.MarkPaid(c.Request.Context(), id, ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// DELETE /booking/:bookingId
func (h *Handler) DeleteByID(c *gin.Context) {
	id, ok := pathUUID(c, "bookingId")
	if !ok {
		return
	}

	current, err := h.bookings.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.identity.CheckOwner(callerIdentity(c), current); err != nil {
		writeError(c, err)
		return
	}

	if err := h.bookings.DeleteByID(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /booking/bill/:billId
func (h *Handler) DeleteByBill(c *gin.Context) {
	billID, ok := pathUUID(c, "billId")
	if !ok {
		return
	}

	group, err := h.bookings.FindByBill(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(group) == 0 {
		writeError(c, service.ErrNotFound)
		return
	}
	if err := h.identity.CheckOwner(callerIdentity(c), &group[0]); err != nil {
		writeError(c, err)
		return
	}

	if err := h.bookings.DeleteByBill(c.Request.Context(), billID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
