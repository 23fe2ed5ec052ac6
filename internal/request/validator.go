package request

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// Every value below ends up as an argv element, so these classes are the only
// thing standing between request input and the child process.
var (
	packagePattern    = regexp.MustCompile(`^[A-Za-z0-9._\-/+:=]*$`)
	namePattern       = regexp.MustCompile(`^[A-Za-z0-9._\-]*$`)
	execPathPattern   = regexp.MustCompile(`^[A-Za-z0-9._\-/]*$`)
	searchPathPattern = regexp.MustCompile(`^[A-Za-z0-9._\-/:]*$`)

	validatorOnce sync.Once
	validateInst  *validator.Validate

	tagMessages = map[string]string{
		"required":   "must not be empty",
		"oneof":      "unsupported value",
		"pkgname":    "invalid package identifier",
		"pkgoption":  "invalid install option",
		"pkgversion": "invalid version",
		"envname":    "invalid environment name",
		"channel":    "invalid channel name",
		"exepath":    "invalid executable path",
	}
)

// ValidPackage reports whether s contains only package identifier characters.
// Packages are positional arguments, so a leading dash is refused.
func ValidPackage(s string) bool {
	return packagePattern.MatchString(s) && !strings.HasPrefix(s, "-")
}

// ValidOption reports whether s is usable as an install option flag.
func ValidOption(s string) bool { return packagePattern.MatchString(s) }

// ValidEnvironment reports whether s is a well-formed environment name.
func ValidEnvironment(s string) bool { return namePattern.MatchString(s) }

// ValidChannel reports whether s is a well-formed channel name.
func ValidChannel(s string) bool { return namePattern.MatchString(s) }

// ValidVersion reports whether s is a well-formed version string.
func ValidVersion(s string) bool { return namePattern.MatchString(s) }

// ValidExecutablePath reports whether s is a well-formed directory or executable path.
func ValidExecutablePath(s string) bool { return execPathPattern.MatchString(s) }

// ValidSearchPath reports whether s is a well-formed ':'-separated list of directories.
func ValidSearchPath(s string) bool { return searchPathPattern.MatchString(s) }

// ValidSearchPaths reports whether every element of dirs is a well-formed path.
func ValidSearchPaths(dirs []string) bool {
	for _, dir := range dirs {
		if !ValidExecutablePath(dir) {
			return false
		}
	}
	return true
}

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("field"); name != "" {
				return name
			}
			return strings.ToLower(fld.Name)
		})

		register := func(tag string, fn func(string) bool) {
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return fn(fl.Field().String())
			})
		}
		register("pkgname", ValidPackage)
		register("pkgoption", ValidOption)
		register("pkgversion", ValidVersion)
		register("envname", ValidEnvironment)
		register("channel", ValidChannel)
		register("exepath", ValidExecutablePath)

		validateInst = v
	})

	return validateInst
}

// Validate checks field character classes and the cross-field rules that depend
// on the addressed tool.
func (r *Request) Validate() error {
	if r == nil {
		return convergeerrors.NewValidationError("", "", "request is nil", nil)
	}

	if err := validatorInstance().Struct(r); err != nil {
		return convertValidationError(err)
	}

	if !r.Tool.Supports(r.State) {
		return convergeerrors.NewValidationError("state", string(r.State), fmt.Sprintf("not supported by %s", r.Tool), nil)
	}
	if !r.Tool.Scoped() {
		if r.Environment != "" {
			return convergeerrors.NewValidationError("env", r.Environment, fmt.Sprintf("environments are not supported by %s", r.Tool), nil)
		}
		if len(r.Channels) > 0 {
			return convergeerrors.NewValidationError("channels", strings.Join(r.Channels, ","), fmt.Sprintf("channels are not supported by %s", r.Tool), nil)
		}
	}
	if r.State == StateRemoveEnv && r.Environment == "" {
		return convergeerrors.NewValidationError("env", "", "required when state is remove_env", nil)
	}
	if r.Version != "" && len(r.Packages) != 1 {
		return convergeerrors.NewValidationError("version", r.Version, "a version pin requires exactly one package", nil)
	}

	return nil
}

func convertValidationError(err error) error {
	ves, ok := err.(validator.ValidationErrors)
	if !ok || len(ves) == 0 {
		return convergeerrors.NewValidationError("request", "", err.Error(), err)
	}

	fe := ves[0]
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}

	return convergeerrors.NewValidationError(field, fmt.Sprint(fe.Value()), msg, err)
}
