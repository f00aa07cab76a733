package validate_test

import (
	"testing"

	"github.com/vastrahub/vastra/pkg/validate"
)

type productInput struct {
	Name     string  `json:"name"     validate:"required,min=2,max=120"`
	Email    string  `json:"email"    validate:"required,email"`
	Price    float64 `json:"price"    validate:"required,gt=0"`
	Quantity int     `json:"quantity" validate:"required,gte=1,lte=50"`
	Category string  `json:"category" validate:"required,in=Sarees,Kurtas,Shirts,Dresses,Accessories"`
	Website  string  `json:"website"  validate:"nullable,url"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{
		Name:     "Silk Saree",
		Email:    "seller@example.com",
		Price:    499,
		Quantity: 2,
		Category: "Sarees",
		Website:  "", // nullable — allowed to be empty
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	if !validate.HasErrors(errs) {
		t.Error("expected required errors")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email to be required")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Quantity int `json:"quantity" validate:"required,gte=1,lte=50"`
	}
	if errs := validate.Struct(in{Quantity: 51}); !validate.HasErrors(errs) {
		t.Error("expected quantity > 50 to fail")
	}
	if errs := validate.Struct(in{Quantity: 2}); validate.HasErrors(errs) {
		t.Errorf("expected quantity 2 to pass, got: %v", errs)
	}
}

func TestGtRule(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"required,gt=0"`
	}
	if errs := validate.Struct(in{Price: -5}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail")
	}
	if errs := validate.Struct(in{Price: 0.01}); validate.HasErrors(errs) {
		t.Errorf("expected positive price to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Category string `json:"category" validate:"required,in=Sarees,Kurtas,Shirts"`
	}
	if errs := validate.Struct(in{Category: "Jackets"}); !validate.HasErrors(errs) {
		t.Error("expected unknown category to fail")
	}
	if errs := validate.Struct(in{Category: "Kurtas"}); validate.HasErrors(errs) {
		t.Errorf("expected Kurtas to pass, got: %v", errs)
	}
}

// The in= parameter list must survive a following rule.
func TestInRuleFollowedByOtherRule(t *testing.T) {
	type in struct {
		Size string `json:"size" validate:"required,in=XS,S,M,L,XL,XXL,max=4"`
	}
	if errs := validate.Struct(in{Size: "M"}); validate.HasErrors(errs) {
		t.Errorf("expected M to pass, got: %v", errs)
	}
	if errs := validate.Struct(in{Size: "XXXL"}); !validate.HasErrors(errs) {
		t.Error("expected XXXL to fail")
	}
}

func TestMinMaxStringLength(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"required,min=2,max=5"`
	}
	if errs := validate.Struct(in{Name: "a"}); !validate.HasErrors(errs) {
		t.Error("expected 1-char name to fail")
	}
	if errs := validate.Struct(in{Name: "toolongname"}); !validate.HasErrors(errs) {
		t.Error("expected long name to fail")
	}
	if errs := validate.Struct(in{Name: "Asha"}); validate.HasErrors(errs) {
		t.Errorf("expected Asha to pass, got: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"nullable,url"`
	}
	if errs := validate.Struct(in{Website: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass, got: %v", errs)
	}
	if errs := validate.Struct(in{Website: "not a url"}); !validate.HasErrors(errs) {
		t.Error("expected bad url to fail")
	}
}
