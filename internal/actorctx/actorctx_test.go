package actorctx

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	if _, ok := UserIDFrom(context.Background()); ok {
		t.Fatalf("empty context must not carry a user")
	}

	if _, ok := UserIDFrom(WithUserID(context.Background(), "")); ok {
		t.Fatalf("empty id must not count as a user")
	}

	id, ok := UserIDFrom(WithUserID(context.Background(), "u-1"))
	if !ok || id != "u-1" {
		t.Fatalf("got %q %v, want u-1 true", id, ok)
	}
}
