package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalFrames(t *testing.T) {
	t.Parallel()

	// Arrange
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/smsauth/internal/pkg/router.Recover.func1.1()
	/app/internal/pkg/router/middleware_recover.go:21 +0x45
panic({0x10a3e60?, 0x1376c50?})
	/usr/local/go/src/runtime/panic.go:792 +0x132
github.com/shandysiswandi/smsauth/internal/auth/usecase.(*Usecase).SendCode(...)
	/app/internal/auth/usecase/send_code.go:48
net/http.HandlerFunc.ServeHTTP(0xc0001a6000?, {0x13a3f28?, 0xc0002ba000?}, 0xc000266000?)
	/usr/local/go/src/net/http/server.go:2294 +0x29
`)

	// Act
	got := InternalFrames(stack)

	// Assert
	want := []string{
		"internal/pkg/router/middleware_recover.go:21",
		"internal/auth/usecase/send_code.go:48",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalFrames() = %v, want %v", got, want)
	}
}

func TestInternalFrames_Empty(t *testing.T) {
	t.Parallel()

	if got := InternalFrames(nil); len(got) != 0 {
		t.Fatalf("InternalFrames(nil) = %v, want empty", got)
	}
}
