package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/datapak/datapak/pack"
	"github.com/datapak/datapak/service"
)

func listDevices(ctx context.Context) ([]service.DeviceInfo, error) {

	s := getServicer(ctx)

	return s.ListDevices(), nil
}

func listFiles(ctx context.Context) ([]pack.Info, error) {

	s := getServicer(ctx)

	device := box.GetUrlParameter(ctx, "deviceLetter")

	return s.Catalog(device)
}

func removeFile(ctx context.Context) error {

	s := getServicer(ctx)

	device := box.GetUrlParameter(ctx, "deviceLetter")
	name := box.GetUrlParameter(ctx, "fileName")

	err := s.RemoveFile(device, name)
	if err != nil {
		return err
	}

	box.GetResponse(ctx).WriteHeader(http.StatusNoContent)
	return nil
}
