package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

type ApparelForm struct {
	Name        string   `json:"name" form:"name" validate:"required,max=120"`
	Price       float64  `json:"price" form:"price" validate:"gte=0"`
	Discount    *float64 `json:"discount" form:"discount" validate:"omitempty,gte=0"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
	Type        string   `json:"type" form:"type" validate:"max=60"`
	IsActive    bool     `json:"isActive" form:"isActive"`
}

type CoachForm struct {
	Name           string   `json:"name" form:"name" validate:"required,max=120"`
	Specialization string   `json:"specialization" form:"specialization" validate:"max=120"`
	Bio            string   `json:"bio" form:"bio" validate:"max=10000"`
	DateOfBirth    string   `json:"dateOfBirth" form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Experience     int      `json:"experience" form:"experience" validate:"gte=0"`
	Certifications []string `json:"certifications" form:"certifications" validate:"dive,max=200"`
	Contact        string   `json:"contact" form:"contact" validate:"max=120"`
	IsActive       bool     `json:"isActive" form:"isActive"`
}

type ClassForm struct {
	Name        string   `json:"name" form:"name" validate:"required,max=120"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
	Schedule    string   `json:"schedule" form:"schedule" validate:"max=200"`
	CoachIDs    []string `json:"coachIds" form:"coachIds"`
	IsActive    bool     `json:"isActive" form:"isActive"`
}

// CatalogHandler manages apparels, coaches and classes for admins
type CatalogHandler struct {
	catalog *services.Catalog
	images  *services.ImageService
}

func NewCatalogHandler(catalog *services.Catalog, images *services.ImageService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, images: images}
}

func listAll[T any](c echo.Context, coll *docstore.Collection[T]) error {
	items, err := coll.Query(c.Request().Context(), docstore.Query{OrderBy: "name"})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// removeDoc deletes a document. Deleting a missing id succeeds.
func (h *CatalogHandler) removeDoc(c echo.Context, remove func(ctx context.Context, id string) error, collection string) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	if err := remove(ctx, id); err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, collection)
	return writeOK(c, id)
}

// uploadImage stores the multipart "image" file and merges its URL into
// the document
func (h *CatalogHandler) uploadImage(c echo.Context, exists func(ctx context.Context, id string) (bool, error), update func(ctx context.Context, id string, fields map[string]interface{}) error, collection string) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	found, err := exists(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return docstore.ErrNotFound
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return services.NewValidationError("image", "required")
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	url, err := h.images.Upload(ctx, collection, id, file)
	if err != nil {
		return err
	}
	err = update(ctx, id, map[string]interface{}{
		"image":     url,
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	h.catalog.Invalidate(ctx, collection)
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "id": id, "image": url})
}

// Apparels

func (h *CatalogHandler) ListApparels(c echo.Context) error {
	return listAll(c, h.catalog.Apparels)
}

func (h *CatalogHandler) StoreApparel(c echo.Context) error {
	var form ApparelForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	item := &models.Apparel{
		Name:        form.Name,
		Price:       form.Price,
		Discount:    form.Discount,
		Description: form.Description,
		Type:        form.Type,
		IsActive:    form.IsActive,
	}
	ctx := c.Request().Context()
	id, err := h.catalog.Apparels.Add(ctx, item)
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.ApparelsCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) UpdateApparel(c echo.Context) error {
	var form ApparelForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	id := c.Param("id")
	ctx := c.Request().Context()
	err := h.catalog.Apparels.Update(ctx, id, map[string]interface{}{
		"name":        form.Name,
		"price":       form.Price,
		"discount":    form.Discount,
		"description": form.Description,
		"type":        form.Type,
		"isActive":    form.IsActive,
		"updatedAt":   docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.ApparelsCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) DeleteApparel(c echo.Context) error {
	return h.removeDoc(c, h.catalog.Apparels.Remove, models.ApparelsCollection)
}

func (h *CatalogHandler) UploadApparelImage(c echo.Context) error {
	return h.uploadImage(c, h.catalog.Apparels.Exists, h.catalog.Apparels.Update, models.ApparelsCollection)
}

// Coaches

func (h *CatalogHandler) ListCoaches(c echo.Context) error {
	return listAll(c, h.catalog.Coaches)
}

// parse validates the date of birth and drops blank certifications
func (f CoachForm) parse() (*time.Time, []string, error) {
	dob, err := timeFromForm(f.DateOfBirth)
	if err != nil {
		return nil, nil, services.NewValidationError("dateOfBirth", "datetime")
	}
	certs := make([]string, 0, len(f.Certifications))
	for _, cert := range f.Certifications {
		if cert = strings.TrimSpace(cert); cert != "" {
			certs = append(certs, cert)
		}
	}
	return dob, certs, nil
}

func (h *CatalogHandler) StoreCoach(c echo.Context) error {
	var form CoachForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	dob, certs, err := form.parse()
	if err != nil {
		return err
	}
	coach := &models.Coach{
		Name:           form.Name,
		Specialization: form.Specialization,
		Bio:            form.Bio,
		DateOfBirth:    dob,
		Experience:     form.Experience,
		Certifications: certs,
		Contact:        form.Contact,
		IsActive:       form.IsActive,
	}
	ctx := c.Request().Context()
	id, err := h.catalog.Coaches.Add(ctx, coach)
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.CoachesCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) UpdateCoach(c echo.Context) error {
	var form CoachForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	dob, certs, err := form.parse()
	if err != nil {
		return err
	}

	id := c.Param("id")
	ctx := c.Request().Context()
	err = h.catalog.Coaches.Update(ctx, id, map[string]interface{}{
		"name":           form.Name,
		"specialization": form.Specialization,
		"bio":            form.Bio,
		"dateOfBirth":    dob,
		"experience":     form.Experience,
		"certifications": certs,
		"contact":        form.Contact,
		"isActive":       form.IsActive,
		"updatedAt":      docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.CoachesCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) DeleteCoach(c echo.Context) error {
	return h.removeDoc(c, h.catalog.Coaches.Remove, models.CoachesCollection)
}

func (h *CatalogHandler) UploadCoachImage(c echo.Context) error {
	return h.uploadImage(c, h.catalog.Coaches.Exists, h.catalog.Coaches.Update, models.CoachesCollection)
}

// Classes

func (h *CatalogHandler) ListClasses(c echo.Context) error {
	return listAll(c, h.catalog.Classes)
}

func (h *CatalogHandler) StoreClass(c echo.Context) error {
	var form ClassForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	class := &models.Class{
		Name:        form.Name,
		Description: form.Description,
		Schedule:    form.Schedule,
		CoachIDs:    form.CoachIDs,
		IsActive:    form.IsActive,
	}
	if class.CoachIDs == nil {
		class.CoachIDs = []string{}
	}
	ctx := c.Request().Context()
	id, err := h.catalog.Classes.Add(ctx, class)
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.ClassesCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) UpdateClass(c echo.Context) error {
	var form ClassForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	coachIDs := form.CoachIDs
	if coachIDs == nil {
		coachIDs = []string{}
	}
	id := c.Param("id")
	ctx := c.Request().Context()
	err := h.catalog.Classes.Update(ctx, id, map[string]interface{}{
		"name":        form.Name,
		"description": form.Description,
		"schedule":    form.Schedule,
		"coachIds":    coachIDs,
		"isActive":    form.IsActive,
		"updatedAt":   docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}
	h.catalog.Invalidate(ctx, models.ClassesCollection)
	return writeOK(c, id)
}

func (h *CatalogHandler) DeleteClass(c echo.Context) error {
	return h.removeDoc(c, h.catalog.Classes.Remove, models.ClassesCollection)
}
