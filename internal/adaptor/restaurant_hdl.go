package adaptor

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 1 << 20

type RestaurantHandler struct {
	service        usecase.RestaurantService
	maxUploadBytes int64
	log            *zap.Logger
}

func NewRestaurantHandler(service usecase.RestaurantService, maxUploadBytes int64, log *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log.With(zap.String("handler", "restaurant")),
	}
}

// parseRestaurantFilter reads the list query string. Numeric parameters that
// do not parse are reported by name.
func parseRestaurantFilter(r *http.Request) (*request.RestaurantFilter, map[string]string) {
	query := r.URL.Query()
	filter := &request.RestaurantFilter{
		PaginatedRequest: paginationFromQuery(r),
		Sort:             query.Get("sort"),
	}
	errs := map[string]string{}

	optional := func(key string) *string {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			return &v
		}
		return nil
	}
	filter.Search = optional("q")
	filter.City = optional("city")
	filter.Cuisine = optional("cuisine")

	if v := query.Get("price_level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs["price_level"] = "Must be a number"
		} else {
			filter.PriceLevel = &n
		}
	}
	if v := query.Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs["min_rating"] = "Must be a number"
		} else {
			filter.MinRating = &f
		}
	}
	if v := query.Get("open_now"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs["open_now"] = "Must be true or false"
		} else {
			filter.OpenNow = b
		}
	}

	return filter, errs
}

// ListRestaurants handles GET /api/restaurants (public)
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseRestaurantFilter(r)
	if len(errs) > 0 {
		utils.ResponseBadRequest(w, "Invalid query parameters", errs)
		return
	}

	filter.Normalize()
	if validationErrors := utils.ValidateStruct(filter); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	restaurants, err := h.service.ListRestaurants(r.Context(), actorID(r), filter)
	if err != nil {
		writeServiceError(w, h.log, err, "list restaurants")
		return
	}

	utils.ResponseSuccess(w, "Restaurants retrieved successfully", restaurants)
}

// GetRestaurant handles GET /api/restaurants/{id} (public, caller fields when logged in)
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.service.GetRestaurant(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get restaurant")
		return
	}

	utils.ResponseSuccess(w, "Restaurant retrieved successfully", restaurant)
}

// GetRestaurantStatus handles GET /api/restaurants/{id}/status (public)
func (h *RestaurantHandler) GetRestaurantStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetRestaurantStatus(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get restaurant status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// CreateRestaurant handles POST /api/admin/restaurants (admin only)
func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.RestaurantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	restaurant, err := h.service.CreateRestaurant(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create restaurant")
		return
	}

	utils.ResponseCreated(w, "Restaurant created successfully", restaurant)
}

// UpdateRestaurant handles PATCH /api/restaurants/{id} (admin or owning client)
func (h *RestaurantHandler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.RestaurantUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	restaurant, err := h.service.UpdateRestaurant(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update restaurant")
		return
	}

	utils.ResponseSuccess(w, "Restaurant updated successfully", restaurant)
}

// DeleteRestaurant handles DELETE /api/admin/restaurants/{id} (admin only)
func (h *RestaurantHandler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRestaurant(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete restaurant")
		return
	}

	utils.ResponseSuccess(w, "Restaurant deleted successfully", nil)
}

// UploadImage handles POST /api/restaurants/{id}/images (multipart field "image")
func (h *RestaurantHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseTooLarge(w, "Image is too large")
			return
		}
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"image": "This field is required"})
		return
	}
	defer file.Close()

	upload, err := h.service.UploadRestaurantImage(r.Context(), actor, chi.URLParam(r, "id"), file)
	if err != nil {
		writeServiceError(w, h.log, err, "upload restaurant image")
		return
	}

	utils.ResponseCreated(w, "Image uploaded successfully", upload)
}

// ListMyRestaurants handles GET /api/client/restaurants (client only)
func (h *RestaurantHandler) ListMyRestaurants(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	restaurants, err := h.service.ListClientRestaurants(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "list client restaurants")
		return
	}

	utils.ResponseSuccess(w, "Restaurants retrieved successfully", restaurants)
}

// AssignOwner handles PUT /api/admin/restaurants/{id}/owner (admin only)
func (h *RestaurantHandler) AssignOwner(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.AssignOwnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	restaurant, err := h.service.AssignOwner(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "assign owner")
		return
	}

	utils.ResponseSuccess(w, "Owner updated successfully", restaurant)
}
