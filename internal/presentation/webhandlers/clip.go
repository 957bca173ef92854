package webhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/google/uuid"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

type createRequest struct {
	Content   string `json:"content"`
	Title     string `json:"title"`
	Expires   string `json:"expires"`
	Password  string `json:"password"`
	ShortCode string `json:"shortcode"`
}

type updateRequest struct {
	Content  *string `json:"content"`
	Title    *string `json:"title"`
	Expires  *string `json:"expires"`
	Password *string `json:"password"`
}

type createResponse struct {
	aggregate.ClipView
	URL string `json:"url"`
}

func (app *Handlers) requestLogger(r *http.Request) *slog.Logger {
	return app.Logger.With(
		"source_ip", getClientIP(r),
		"request_id", uuid.NewString(),
	)
}

// Create handle clip creation.
// JSON body is createRequest, any other body is clip content with
// title, expires and shortcode in query.
func (app *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	logger := app.requestLogger(r)
	logger.Debug("Start creating clip")

	req, err := app.parseCreateRequest(w, r)
	if err != nil {
		app.handleError(w, err, logger)
		return
	}

	clip, err := app.clipService.CreateClip(req)
	if err != nil {
		app.handleError(w, err, logger)
		return
	}

	url := fmt.Sprintf("%s://%s/%s/", detectProto(r), r.Host, clip.ShortCode())
	w.Header().Set("Location", url)
	app.answer(w, http.StatusCreated, createResponse{ClipView: clip.View(), URL: url}, logger)

	logger.Info("Created clip", "shortcode", clip.ShortCode().String(), "protected", clip.Protected())
}

func (app *Handlers) parseCreateRequest(w http.ResponseWriter, r *http.Request) (service.NewClip, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, app.maxBodySize))
	if err != nil {
		return service.NewClip{}, err
	}

	apikey := r.Header.Get(HeaderAPIKey)

	if isJSON(r) {
		var req createRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return service.NewClip{}, domainerrors.Validation(fmt.Errorf("invalid json: %w", err))
		}
		return service.NewClip{
			Content:   req.Content,
			Title:     req.Title,
			Expires:   req.Expires,
			Password:  req.Password,
			ShortCode: req.ShortCode,
			APIKey:    apikey,
		}, nil
	}

	query := r.URL.Query()
	return service.NewClip{
		Content:   string(body),
		Title:     query.Get("title"),
		Expires:   query.Get("expires"),
		Password:  r.Header.Get(HeaderPassword),
		ShortCode: query.Get("shortcode"),
		APIKey:    apikey,
	}, nil
}

// Get handle getting clip. Answers raw content unless json is accepted.
func (app *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	shortcode := r.PathValue("shortcode")
	logger := app.requestLogger(r).With("shortcode", shortcode)
	logger.Debug("Start getting clip")

	clip, err := app.clipService.GetClip(service.GetClip{
		ShortCode: shortcode,
		Password:  r.Header.Get(HeaderPassword),
	})
	if err != nil {
		app.handleError(w, err, logger)
		return
	}

	if wantsJSON(r) {
		app.answer(w, http.StatusOK, clip.View(), logger)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, clip.Content().Value()); err != nil {
		logger.Error("Fail to answer", "error", err)
		return
	}

	logger.Info("Got clip")
}

// Update handle clip update. Current password is taken from header.
func (app *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	shortcode := r.PathValue("shortcode")
	logger := app.requestLogger(r).With("shortcode", shortcode)
	logger.Debug("Start updating clip")

	var req updateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, app.maxBodySize))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		app.handleError(w, domainerrors.Validation(err), logger)
		return
	}

	clip, err := app.clipService.UpdateClip(service.UpdateClip{
		ShortCode:       shortcode,
		Content:         req.Content,
		Title:           req.Title,
		Expires:         req.Expires,
		Password:        req.Password,
		CurrentPassword: r.Header.Get(HeaderPassword),
		APIKey:          r.Header.Get(HeaderAPIKey),
	})
	if err != nil {
		app.handleError(w, err, logger)
		return
	}

	app.answer(w, http.StatusOK, clip.View(), logger)
	logger.Info("Updated clip")
}

// Delete handle clip removal.
func (app *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	shortcode := r.PathValue("shortcode")
	logger := app.requestLogger(r).With("shortcode", shortcode)

	err := app.clipService.DeleteClip(service.DeleteClip{
		ShortCode: shortcode,
		Password:  r.Header.Get(HeaderPassword),
		APIKey:    r.Header.Get(HeaderAPIKey),
	})
	if err != nil {
		app.handleError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("Deleted clip")
}

func isJSON(r *http.Request) bool {
	mediatype, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediatype == "application/json"
}
