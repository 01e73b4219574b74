package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayhaven/service-booking/internal/application"
	"github.com/stayhaven/service-booking/internal/auth"
	userDomain "github.com/stayhaven/service-booking/internal/domain/user"
	"github.com/stayhaven/service-booking/internal/middleware"
	"github.com/stayhaven/service-booking/internal/response"
)

// RoomHandler handles HTTP requests for the room catalog.
type RoomHandler struct {
	service *application.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *application.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// RegisterRoutes registers all room routes on the given router group. Listing
// is public; adding rooms is an administrative operation.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.ListAvailableRooms)
		rooms.POST("/add",
			middleware.Auth(jwtManager),
			middleware.RequireRole(string(userDomain.RoleAdmin)),
			h.CreateRoom,
		)
	}
}

// ListAvailableRooms handles GET /rooms.
func (h *RoomHandler) ListAvailableRooms(c *gin.Context) {
	result, err := h.service.GetAllAvailable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateRoom handles POST /rooms/add.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
