package events

import "context"

type ctxKey string

const ctxPublishMetadata ctxKey = "publish_metadata"

// ContextWithMetadata attaches correlation and causation ids so publishers
// further down the call chain can stamp them on emitted events.
func ContextWithMetadata(ctx context.Context, meta PublishMetadata) context.Context {
	return context.WithValue(ctx, ctxPublishMetadata, meta)
}

func MetadataFromContext(ctx context.Context) PublishMetadata {
	if v := ctx.Value(ctxPublishMetadata); v != nil {
		if meta, ok := v.(PublishMetadata); ok {
			return meta
		}
	}
	return PublishMetadata{}
}
