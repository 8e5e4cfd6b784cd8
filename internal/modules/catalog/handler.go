package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/pkg/response"
	"coursedesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/* ---------- ROUTE REGISTRATION ---------- */

// RegisterRoutes mounts reads on protected, material writes on staff
// (teacher and admin) and the rest of the writes on admin.
func (h *Handler) RegisterRoutes(protected, staff, admin *gin.RouterGroup) {
	protected.GET("/courses", h.GetCourses)
	protected.GET("/course-dates", h.GetCourseDates)
	protected.GET("/materials", h.GetMaterials)

	staff.POST("/materials", h.CreateMaterial)
	staff.PATCH("/materials", h.UpdateMaterial)
	staff.DELETE("/materials", h.DeleteMaterial)

	admin.POST("/courses", h.CreateCourse)
	admin.PATCH("/courses", h.UpdateCourse)
	admin.DELETE("/courses", h.DeleteCourse)

	admin.POST("/course-dates", h.CreateCourseDate)
	admin.PATCH("/course-dates", h.UpdateCourseDate)
	admin.DELETE("/course-dates", h.DeleteCourseDate)

	admin.GET("/partners", h.GetPartners)
	admin.POST("/partners", h.CreatePartner)
	admin.PATCH("/partners", h.UpdatePartner)
	admin.DELETE("/partners", h.DeletePartner)
}

func caller(c *gin.Context) Caller {
	return Caller{UserID: c.GetInt64("user_id"), Role: c.GetString("role")}
}

// queryID reads an optional positive ?name=; ok is false after a 400 was written.
func queryID(c *gin.Context, name string) (id int64, present bool, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, true, false
	}
	return id, true, true
}

func requiredID(c *gin.Context) (int64, bool) {
	id, present, ok := queryID(c, "id")
	if !ok {
		return 0, false
	}
	if !present {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "id is required")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return false
	}
	return true
}

/* ---------- COURSES ---------- */

// GetCourses godoc
// @Summary      List courses or fetch one
// @Description  Students only see active courses. Teachers may pass mine=true.
// @Tags         Catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   query int  false "Course ID"
// @Param        mine query bool false "Only my courses (teachers)"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /courses [get]
func (h *Handler) GetCourses(c *gin.Context) {
	id, present, ok := queryID(c, "id")
	if !ok {
		return
	}
	if present {
		course, err := h.service.GetCourse(c.Request.Context(), caller(c), id)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"course": course})
		return
	}

	courses, err := h.service.ListCourses(c.Request.Context(), caller(c), c.Query("mine") == "true")
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	var req UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := requiredID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

/* ---------- COURSE DATES ---------- */

func (h *Handler) GetCourseDates(c *gin.Context) {
	id, present, ok := queryID(c, "id")
	if !ok {
		return
	}
	if present {
		d, err := h.service.GetCourseDate(c.Request.Context(), id)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"course_date": d})
		return
	}

	courseID, hasCourse, ok := queryID(c, "course_id")
	if !ok {
		return
	}
	var filter *int64
	if hasCourse {
		filter = &courseID
	}
	dates, err := h.service.ListCourseDates(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course_dates": dates})
}

// CreateCourseDate godoc
// @Summary      Schedule a course date
// @Tags         Catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateCourseDateRequest true "Course date"
// @Success      201 {object} domain.CourseDate
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /course-dates [post]
func (h *Handler) CreateCourseDate(c *gin.Context) {
	var req CreateCourseDateRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.service.CreateCourseDate(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course_date": d})
}

func (h *Handler) UpdateCourseDate(c *gin.Context) {
	var req UpdateCourseDateRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.service.UpdateCourseDate(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course_date": d})
}

func (h *Handler) DeleteCourseDate(c *gin.Context) {
	id, ok := requiredID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCourseDate(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

/* ---------- PARTNERS ---------- */

func (h *Handler) GetPartners(c *gin.Context) {
	id, present, ok := queryID(c, "id")
	if !ok {
		return
	}
	if present {
		p, err := h.service.GetPartner(c.Request.Context(), id)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"partner": p})
		return
	}

	partners, err := h.service.ListPartners(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"partners": partners})
}

func (h *Handler) CreatePartner(c *gin.Context) {
	var req PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.service.CreatePartner(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"partner": p})
}

func (h *Handler) UpdatePartner(c *gin.Context) {
	var req UpdatePartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.service.UpdatePartner(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"partner": p})
}

func (h *Handler) DeletePartner(c *gin.Context) {
	id, ok := requiredID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePartner(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

/* ---------- MATERIALS ---------- */

// GetMaterials godoc
// @Summary      List course materials
// @Description  Students only receive materials marked visible
// @Tags         Materials
// @Security     BearerAuth
// @Produce      json
// @Param        id        query int false "Material ID"
// @Param        course_id query int false "Course ID"
// @Success      200 {object} map[string]interface{}
// @Router       /materials [get]
func (h *Handler) GetMaterials(c *gin.Context) {
	id, present, ok := queryID(c, "id")
	if !ok {
		return
	}
	if present {
		m, err := h.service.GetMaterial(c.Request.Context(), caller(c), id)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"material": m})
		return
	}

	courseID, _, ok := queryID(c, "course_id")
	if !ok {
		return
	}
	items, err := h.service.ListMaterials(c.Request.Context(), caller(c), courseID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"materials": items})
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var req CreateMaterialRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.service.CreateMaterial(c.Request.Context(), caller(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"material": m})
}

func (h *Handler) UpdateMaterial(c *gin.Context) {
	var req UpdateMaterialRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.service.UpdateMaterial(c.Request.Context(), caller(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"material": m})
}

func (h *Handler) DeleteMaterial(c *gin.Context) {
	id, ok := requiredID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMaterial(c.Request.Context(), caller(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

/* ---------- ERROR HANDLING ---------- */

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Course not found")
	case errors.Is(err, ErrCourseDateNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Course date not found")
	case errors.Is(err, ErrPartnerNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Partner not found")
	case errors.Is(err, ErrMaterialNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Material not found")
	case errors.Is(err, ErrTeacherNotFound):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "teacher_id must reference a teacher")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Dates must be YYYY-MM-DD")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update or inconsistent values")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't have permission to perform this action")
	default:
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", err.Error())
	}
}
