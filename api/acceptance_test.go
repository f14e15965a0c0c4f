package api

import (
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
	"go.uber.org/zap"

	"github.com/datapak/datapak/database"
	"github.com/datapak/datapak/service"
)

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		db := database.NewDatabase(&database.Config{
			Dir:     t.TempDir(),
			Devices: "ABC",
		}, zap.NewNop())

		biff.AssertNil(db.Load())
		biff.AssertEqual(db.GetStatus(), database.StatusOperating)

		s := service.NewService(db)

		b := Build(s, "test")
		b.WithInterceptors(
			InterceptorUnavailable(db),
			RecoverFromPanic,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		service.Acceptance(a, func(method, path string) *apitest.Request {
			return api.Request(method, "/v1"+path)
		})
	})
}
