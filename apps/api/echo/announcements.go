package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/announce"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
)

type announcementApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := announcementApi{syncer: syncer, validate: validate}

	ag := g.Group("/announcements")
	ag.GET("", api.query)
	ag.POST("", api.create, staffMiddleware())
}

func (api *announcementApi) query(ctx echo.Context) error {
	list := api.syncer.Snapshot().Announcements
	if list == nil {
		list = []announce.Announcement{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announce.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	data.Title = core.CleanString(data.Title)
	data.Message = core.CleanString(data.Message)
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	a := data.Announcement(uuid.NewString(), time.Now())
	list := announce.Append(api.syncer.Snapshot().Announcements, a)

	if err := api.syncer.Save(ctx.Request().Context(), school.PathAnnouncements, list); err != nil {
		return errors.Wrap(err, "saving announcements")
	}
	return ctx.JSON(http.StatusCreated, a)
}
