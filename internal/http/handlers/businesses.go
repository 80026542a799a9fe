package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"westcoastdigital.co.za/app/internal/http/middleware"
	"westcoastdigital.co.za/app/internal/http/validation"
	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/shared/apperr"
)

type BusinessesHandler struct {
	Service *businesses.Service
	Repo    *businesses.Repo
}

func NewBusinessesHandler(svc *businesses.Service, repo *businesses.Repo) *BusinessesHandler {
	return &BusinessesHandler{Service: svc, Repo: repo}
}

// GET /api/businesses
func (h *BusinessesHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "12"))

	res, err := h.Repo.List(c.Request.Context(), businesses.ListParams{
		Town:     c.Query("town"),
		Industry: c.Query("industry"),
		Tier:     c.Query("tier"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": res.Items,
		"total":      res.Total,
		"page":       page,
	})
}

// GET /api/businesses/:id
func (h *BusinessesHandler) Get(c *gin.Context) {
	b, err := h.Service.GetForView(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	imgs, _ := h.Repo.ListImages(c.Request.Context(), b.ID)
	c.JSON(http.StatusOK, gin.H{"business": b, "images": imgs})
}

type createBusinessRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required,min=7,max=32"`
	Industry    string `json:"industry" binding:"required"`
	Town        string `json:"town" binding:"required"`
	Address     string `json:"address" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=1000"`
	Website     string `json:"website" binding:"omitempty,url"`
}

// POST /api/businesses
func (h *BusinessesHandler) Create(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req createBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid business data.", validation.FromBindError(err, &req)))
		return
	}
	if fields := validateEnums(req.Town, req.Industry); len(fields) > 0 {
		middleware.Fail(c, apperr.InvalidErr("Invalid business data.", fields))
		return
	}

	b, err := h.Service.Create(c.Request.Context(), businesses.CreateInput{
		OwnerID:     u.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Industry:    req.Industry,
		Town:        req.Town,
		Address:     req.Address,
		Description: req.Description,
		Website:     req.Website,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"business": b})
}

type updateBusinessRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,min=7,max=32"`
	Industry    *string `json:"industry"`
	Town        *string `json:"town"`
	Address     *string `json:"address" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Website     *string `json:"website" binding:"omitempty,url"`
}

// PUT /api/businesses/:id
func (h *BusinessesHandler) Update(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req updateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid business data.", validation.FromBindError(err, &req)))
		return
	}
	town, industry := "", ""
	if req.Town != nil {
		town = *req.Town
	}
	if req.Industry != nil {
		industry = *req.Industry
	}
	if fields := validateEnums(town, industry); len(fields) > 0 {
		middleware.Fail(c, apperr.InvalidErr("Invalid business data.", fields))
		return
	}

	b, err := h.Service.Update(c.Request.Context(), c.Param("id"), u.ID, u.Role, businesses.UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Industry:    req.Industry,
		Town:        req.Town,
		Address:     req.Address,
		Description: req.Description,
		Website:     req.Website,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": b})
}

// DELETE /api/businesses/:id
func (h *BusinessesHandler) Delete(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	if err := h.Service.Delete(c.Request.Context(), c.Param("id"), u.ID, u.Role); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GET /api/businesses/user/my-businesses
func (h *BusinessesHandler) MyBusinesses(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	items, err := h.Repo.ListByOwner(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": items})
}

// POST /api/businesses/:id/click
func (h *BusinessesHandler) Click(c *gin.Context) {
	// best-effort counter, response is always ok
	_ = h.Repo.IncrementClicks(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/businesses/:id/images
func (h *BusinessesHandler) UploadImage(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	file, err := c.FormFile("image")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Image file is required.", nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer src.Close()

	img, err := h.Service.AttachImage(c.Request.Context(), c.Param("id"), u.ID, u.Role, src, businesses.AttachImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Caption:     c.PostForm("caption"),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": img})
}

func validateEnums(town, industry string) map[string]string {
	fields := map[string]string{}
	if town != "" && !contains(businesses.Towns, town) {
		fields["town"] = "Unknown town."
	}
	if industry != "" && !contains(businesses.Industries, industry) {
		fields["industry"] = "Unknown industry."
	}
	return fields
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
