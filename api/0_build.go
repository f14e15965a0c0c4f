package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/datapak/datapak/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		injectServicer(s),
	)

	v1.Resource("/devices").
		WithActions(
			box.Get(listDevices),
		)

	v1.Resource("/devices/{deviceLetter}/files").
		WithActions(
			box.Get(listFiles),
		)

	v1.Resource("/devices/{deviceLetter}/files/{fileName}").
		WithActions(
			box.Delete(removeFile),
		)

	v1.Resource("/session").
		WithActions(
			box.Get(getSession),
			box.Post(openSession),
			box.Delete(closeSession),
			box.ActionPost(clear).WithName("clear"),
			box.ActionPost(set).WithName("set"),
			box.ActionPost(appendRecord).WithName("appendRecord"),
			box.ActionPost(read).WithName("read"),
			box.ActionPost(get).WithName("get"),
			box.ActionPost(first).WithName("first"),
			box.ActionPost(next).WithName("next"),
			box.ActionPost(back).WithName("back"),
			box.ActionPost(find).WithName("find"),
			box.ActionPost(update).WithName("update"),
			box.ActionPost(erase).WithName("erase"),
			box.ActionPost(lastError).WithName("lastError"),
		)

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	return b
}

type servicerKeyType struct{}

var servicerKey = servicerKeyType{}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(setServicer(ctx, s))
		}
	}
}

func setServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, servicerKey, s)
}

func getServicer(ctx context.Context) service.Servicer {
	s, _ := ctx.Value(servicerKey).(service.Servicer)
	return s
}
