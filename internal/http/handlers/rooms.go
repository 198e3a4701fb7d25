package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/domain/models"
)

// POST /api/rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomSvc(c).CreateRoom(c.Request.Context(), req.input(models.Room{}))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRoom(room))
}

// GET /api/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.roomSvc(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoom(r))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/rooms/:id
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.roomSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoom(room))
}

// PUT /api/rooms/:id
// Omitted fields keep their current value; an omitted bed list with no
// bed_count keeps the current beds.
func (h *Handler) UpdateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	svc := h.roomSvc(c)
	current, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	room, err := svc.EditRoomBeds(c.Request.Context(), current.ID, req.input(current))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoom(room))
}

// DELETE /api/rooms/:id
func (h *Handler) DeleteRoom(c *gin.Context) {
	if err := h.roomSvc(c).DeleteRoom(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// GET /api/rooms/:id/beds?status=
func (h *Handler) ListBeds(c *gin.Context) {
	status, err := queryBedStatus(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	beds, err := h.roomSvc(c).ListBeds(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBeds(beds))
}

// GET /api/rooms/:id/beds/vacant
func (h *Handler) ListVacantBeds(c *gin.Context) {
	beds, err := h.roomSvc(c).ListVacantBeds(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBeds(beds))
}

// PUT /api/rooms/:id/beds/:bed
func (h *Handler) SetBedStatus(c *gin.Context) {
	var req bedStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomSvc(c).SetBedStatus(c.Request.Context(), c.Param("id"), c.Param("bed"), req.Status, req.OccupantName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoom(room))
}

// GET /api/occupancy
func (h *Handler) Occupancy(c *gin.Context) {
	beds, err := h.roomSvc(c).OccupancySnapshot(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, beds)
}
