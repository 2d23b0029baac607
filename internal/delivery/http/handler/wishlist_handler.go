package handler

import (
	"net/http"

	"aspire-wishlist/internal/usecase/wishlist"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistHandler struct {
	service *wishlist.Service
}

func NewWishlistHandler(service *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// RegisterRoutes mounts wishlist and item management for the signed-in owner.
func (h *WishlistHandler) RegisterRoutes(router *gin.RouterGroup) {
	wishlists := router.Group("/wishlists")
	{
		wishlists.GET("", h.List)
		wishlists.POST("", h.Create)
		wishlists.GET("/:id", h.Get)
		wishlists.PATCH("/:id", h.Update)
		wishlists.DELETE("/:id", h.Delete)
		wishlists.PUT("/:id/access-code", h.SetAccessCode)

		wishlists.GET("/:id/items", h.ListItems)
		wishlists.POST("/:id/items", h.CreateItem)
		wishlists.GET("/:id/items/:item_id", h.GetItem)
		wishlists.PATCH("/:id/items/:item_id", h.UpdateItem)
		wishlists.DELETE("/:id/items/:item_id", h.DeleteItem)
	}
}

func (h *WishlistHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	public := router.Group("/public/wishlists")
	{
		public.GET("/:uuid", h.PublicView)
		public.POST("/:uuid/hidden-items", h.HiddenItems)
	}
}

func (h *WishlistHandler) List(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlists, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlists retrieved successfully", wishlists)
}

func (h *WishlistHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req wishlist.CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	created, err := h.service.Create(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Wishlist created successfully", created)
}

func (h *WishlistHandler) Get(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	w, err := h.service.GetOwned(c.Request.Context(), ownerID, wishlistID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlist retrieved successfully", w)
}

func (h *WishlistHandler) Update(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	var req wishlist.UpdateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), ownerID, wishlistID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlist updated successfully", updated)
}

func (h *WishlistHandler) Delete(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, wishlistID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlist deleted successfully", nil)
}

func (h *WishlistHandler) SetAccessCode(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	var req wishlist.SetAccessCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	updated, err := h.service.SetAccessCode(c.Request.Context(), ownerID, wishlistID, req.AccessCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Access code updated successfully", updated)
}

func (h *WishlistHandler) ListItems(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), ownerID, wishlistID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Items retrieved successfully", items)
}

func (h *WishlistHandler) CreateItem(c *gin.Context) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return
	}

	var req wishlist.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), ownerID, wishlistID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Item created successfully", item)
}

func (h *WishlistHandler) GetItem(c *gin.Context) {
	ownerID, wishlistID, itemID, ok := ownerWishlistAndItem(c)
	if !ok {
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), ownerID, wishlistID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Item retrieved successfully", item)
}

func (h *WishlistHandler) UpdateItem(c *gin.Context) {
	ownerID, wishlistID, itemID, ok := ownerWishlistAndItem(c)
	if !ok {
		return
	}

	var req wishlist.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), ownerID, wishlistID, itemID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Item updated successfully", item)
}

func (h *WishlistHandler) DeleteItem(c *gin.Context) {
	ownerID, wishlistID, itemID, ok := ownerWishlistAndItem(c)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), ownerID, wishlistID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Item deleted successfully", nil)
}

func (h *WishlistHandler) PublicView(c *gin.Context) {
	publicID, ok := publicUUID(c)
	if !ok {
		return
	}

	view, err := h.service.PublicView(c.Request.Context(), publicID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlist retrieved successfully", view)
}

func (h *WishlistHandler) HiddenItems(c *gin.Context) {
	publicID, ok := publicUUID(c)
	if !ok {
		return
	}

	var req wishlist.HiddenItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	items, err := h.service.ListHiddenForPublicUUID(c.Request.Context(), publicID, req.AccessCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Hidden items retrieved successfully", items)
}

func ownerAndWishlist(c *gin.Context) (int64, int64, bool) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return 0, 0, false
	}
	wishlistID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	return ownerID, wishlistID, true
}

func ownerWishlistAndItem(c *gin.Context) (int64, int64, int64, bool) {
	ownerID, wishlistID, ok := ownerAndWishlist(c)
	if !ok {
		return 0, 0, 0, false
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return 0, 0, 0, false
	}
	return ownerID, wishlistID, itemID, true
}

// publicUUID answers 404 for anything that is not a UUID, same as an unknown one.
func publicUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		utils.AppErrorResponse(c, http.StatusNotFound, appErrors.NotFound("Wishlist not found."))
		return uuid.Nil, false
	}
	return id, true
}
