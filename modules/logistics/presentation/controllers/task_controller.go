package controllers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskphoto"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

const maxPhotoUpload = 10 << 20

type TaskController struct {
	tasks   *services.TaskService
	photos  *services.TaskPhotoService
	history *services.TaskHistoryService
}

func NewTaskController(app application.Application) *TaskController {
	return &TaskController{
		tasks:   app.Service(services.TaskService{}).(*services.TaskService),
		photos:  app.Service(services.TaskPhotoService{}).(*services.TaskPhotoService),
		history: app.Service(services.TaskHistoryService{}).(*services.TaskHistoryService),
	}
}

func (c *TaskController) Key() string {
	return "/api/v1/tasks"
}

func (c *TaskController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/photos", c.listPhotos).Methods(http.MethodGet)
	router.HandleFunc("/{id}/photos", c.attachPhoto).Methods(http.MethodPost)
	// Singular alias kept for mobile clients that upload to /photo.
	router.HandleFunc("/{id}/photo", c.attachPhoto).Methods(http.MethodPost)
	router.HandleFunc("/{id}/photos/{photoId}", c.deletePhoto).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/history", c.listHistory).Methods(http.MethodGet)
}

func (c *TaskController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	params := &task.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := task.ParseStatus(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_INVALID_STATUS", err.Error(), nil)
			return
		}
		params.Status = &status
	}
	if raw := r.URL.Query().Get("courierId"); raw != "" {
		courierID, err := shared.ParseQueryUUID(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_INVALID_COURIER_ID", err.Error(), nil)
			return
		}
		params.CourierID = &courierID
	}
	tasks, total, err := c.tasks.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(tasks, total))
}

func (c *TaskController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	view, err := c.tasks.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *TaskController) create(w http.ResponseWriter, r *http.Request) {
	var body task.CreateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.tasks.Create(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, view)
}

func (c *TaskController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body task.UpdateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.tasks.Update(r.Context(), id, &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *TaskController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.tasks.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *TaskController) listPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	photos, err := c.photos.GetByTask(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, photos)
}

// attachPhoto accepts a multipart form with a "photo" file and an optional
// "type" value. A RECEIPT upload replaces the receipt URL on the task itself.
func (c *TaskController) attachPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_PHOTO_INVALID_FORM", "expected multipart form", nil)
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_PHOTO_MISSING_FILE", "photo file is required", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoUpload))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_PHOTO_UNREADABLE", "failed to read photo", nil)
		return
	}

	photoType := taskphoto.TypeAdditional
	if raw := r.FormValue("type"); raw != "" {
		photoType, err = taskphoto.ParsePhotoType(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "TASK_PHOTO_INVALID_TYPE", err.Error(), nil)
			return
		}
	}

	photo, err := c.photos.Attach(r.Context(), id, photoType, data)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, photo)
}

func (c *TaskController) deletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := shared.ParseUUID(r, "photoId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.photos.Delete(r.Context(), photoID); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *TaskController) listHistory(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	entries, err := c.history.GetByTask(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, entries)
}
