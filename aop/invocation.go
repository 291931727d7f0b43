package aop

import (
	"context"

	"github.com/google/uuid"
)

// AttachmentMetadata is the attachment key under which the weaver stores the
// payload returned by its MetadataSource.
const AttachmentMetadata = "metadata"

// Invocation is the per-call state handed to every interceptor.
// It is created for a single call and never shared.
type Invocation struct {
	// ID identifies this call in logs and traces.
	ID string

	Module string
	Class  string
	Method string

	Receiver any
	Args     []any

	// Attachments carries extra payloads for advice, keyed by name.
	Attachments map[string]any

	ctx context.Context
}

// NewInvocation builds an invocation for a call of method on receiver.
func NewInvocation(ctx context.Context, module, class, method string, receiver any, args []any) *Invocation {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Invocation{
		ID:          uuid.NewString(),
		Module:      module,
		Class:       class,
		Method:      method,
		Receiver:    receiver,
		Args:        args,
		Attachments: make(map[string]any),
		ctx:         ctx,
	}
}

// Context returns the call context. Methods whose first parameter is a
// context.Context receive it.
func (inv *Invocation) Context() context.Context { return inv.ctx }

// SetContext replaces the call context, e.g. to add a span or a deadline.
func (inv *Invocation) SetContext(ctx context.Context) {
	if ctx != nil {
		inv.ctx = ctx
	}
}

// Attach stores v under key.
func (inv *Invocation) Attach(key string, v any) {
	if inv.Attachments == nil {
		inv.Attachments = make(map[string]any)
	}
	inv.Attachments[key] = v
}

// Attachment returns the value stored under key.
func (inv *Invocation) Attachment(key string) (any, bool) {
	v, ok := inv.Attachments[key]
	return v, ok
}

// Metadata returns the payload attached by the weaver's MetadataSource.
func (inv *Invocation) Metadata() (any, bool) {
	return inv.Attachment(AttachmentMetadata)
}

// Signature returns "module.class.method".
func (inv *Invocation) Signature() string {
	return inv.Module + "." + inv.Class + "." + inv.Method
}
