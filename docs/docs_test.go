package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoBasic(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatalf("SwaggerInfo unexpectedly nil")
	}
	if SwaggerInfo.Title == "" {
		t.Fatalf("expected non-empty Title in SwaggerInfo")
	}
	if !strings.Contains(SwaggerInfo.SwaggerTemplate, "paths") {
		t.Fatalf("expected SwaggerTemplate to contain 'paths'")
	}
}

func TestSwaggerDocListsBookingRoute(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	for _, route := range []string{"/api/user/book-appointment", "/api/admin/login", "/api/logout"} {
		if !strings.Contains(doc, route) {
			t.Errorf("expected %s in generated doc", route)
		}
	}
	if !strings.Contains(doc, `"name": "dtoken"`) {
		t.Errorf("expected dtoken security definition")
	}
}
