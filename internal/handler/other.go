package handler

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/lib/utils"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const portalURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// KindUnicorn classifies UnicornError; the router registers its handler on the mapper.
const KindUnicorn errs.Kind = "unicorn"

type UnicornError struct {
	Name string
}

func (e *UnicornError) Error() string {
	return fmt.Sprintf("Oops! %s did something. There goes a rainbow...", e.Name)
}

func (e *UnicornError) Kind() errs.Kind { return KindUnicorn }

// UnicornHandler answers 418 with the unicorn's message at the top level of the body.
func UnicornHandler(err error) errs.Response {
	return errs.Response{
		Status: http.StatusTeapot,
		Body:   map[string]string{"message": err.Error()},
	}
}

// ValidationWithBodyHandler is the 422 answer that also echoes the body the client sent.
func ValidationWithBodyHandler(err error) errs.Response {
	var v *errs.ValidationError
	if !errors.As(err, &v) {
		return errs.ValidationHandler(err)
	}
	return errs.Response{
		Status: http.StatusUnprocessableEntity,
		Body:   map[string]any{"detail": v.Errors, "body": v.Body},
	}
}

// keywordWeights is shaped by a dict[str, float] response schema, so "3.4" is answered as 3.4.
var (
	keywordWeights = map[string]any{"foo": 2.3, "bar": "3.4"}
	weightsOut     = schema.Map("weights", schema.String(""), schema.Float(""))
)

var (
	helloPlan = validation.NewPlan("root",
		validation.Header(schema.String("x_forwarded_for", schema.Optional()), validation.Hidden()),
	)

	helloNamePlan = validation.NewPlan("read_unicorn",
		validation.Path(schema.String("name", schema.Pattern(`^[a-zA-Zа-яА-Я]{2,30}$`))),
	)

	portalPlan = validation.NewPlan("get_portal",
		validation.Query(schema.Bool("teleport", schema.Default(false))),
	)

	loginPlan = validation.NewPlan("login",
		validation.Form(schema.String("username")),
		validation.Form(schema.String("password")),
	)

	filesPlan = validation.NewPlan("create_files",
		validation.File(schema.List("files", schema.File(""), schema.Describe("Multiple files as bytes"))),
	)

	files2Plan = validation.NewPlan("create_file",
		validation.File(schema.File("file")),
		validation.File(schema.File("fileb")),
		validation.Form(schema.String("token")),
	)

	uploadFilesPlan = validation.NewPlan("create_upload_files",
		validation.File(schema.List("files", schema.File(""), schema.Describe("Multiple files as UploadFile"))),
	)

	namesPlan = validation.NewPlan("hello123",
		validation.Query(schema.String("args", schema.Default("World"))),
	)

	modelPlan = validation.NewPlan("get_model",
		validation.Path(schema.Enum("model_name", model.ModelNames)),
	)

	unicornPlan = validation.NewPlan("read_unicorns",
		validation.Path(schema.String("name")),
	)
)

const uploadForm = `
<body>
<form action="%[1]s/files/" enctype="multipart/form-data" method="post">
<input name="files" type="file" multiple>
<input type="submit">
</form>
<form action="%[1]s/files2/" enctype="multipart/form-data" method="post">
<input name="file" type="file">
<input name="fileb" type="file">
<input name="token" type="text">
<input type="submit">
</form>
<form action="%[1]s/uploadfiles/" enctype="multipart/form-data" method="post">
<input name="files" type="file" multiple>
<input type="submit">
</form>
</body>
`

type OtherHandler struct {
	Handler
}

func NewOtherHandler(s *server.Server) *OtherHandler {
	return &OtherHandler{Handler: NewHandler(s)}
}

func (h *OtherHandler) Routes() []Route {
	return tagged("others",
		h.route(http.MethodGet, "/hello", helloPlan, h.Hello, http.StatusOK),
		h.route(http.MethodGet, "/hello/:name", helloNamePlan, h.HelloName, http.StatusOK),
		h.route(http.MethodGet, "/users-dep/", commonsPlan, h.Commons, http.StatusOK),
		h.route(http.MethodGet, "/portal", portalPlan, h.Portal, http.StatusOK),
		h.route(http.MethodGet, "/portal2", portalPlan, h.Portal, http.StatusOK),
		h.route(http.MethodGet, "/keyword-weights/", noParamsPlan, h.KeywordWeights, http.StatusIMUsed).
			Describe("Not Successful Response (Joke)"),
		h.route(http.MethodPost, "/login/", loginPlan, h.Login, http.StatusOK),
		h.route(http.MethodPost, "/files/", filesPlan, h.FileSizes, http.StatusOK),
		h.route(http.MethodPost, "/files2/", files2Plan, h.FileInfo, http.StatusOK),
		h.route(http.MethodPost, "/uploadfiles/", uploadFilesPlan, h.FileNames, http.StatusOK),
		h.htmlRoute(http.MethodGet, "/", noParamsPlan, h.UploadForm, http.StatusOK),
		h.route(http.MethodGet, "/names/", namesPlan, h.Names, http.StatusOK),
		h.route(http.MethodGet, "/models/:model_name", modelPlan, h.Model, http.StatusOK).Tag("models"),
		h.route(http.MethodGet, "/unicorns/:name", unicornPlan, h.Unicorn, http.StatusOK),
	)
}

func (h *OtherHandler) Hello(c echo.Context, in *validation.Bound) (any, error) {
	clientIP := "unknown"
	if forwarded := in.String("x_forwarded_for"); forwarded != "" {
		clientIP, _, _ = strings.Cut(forwarded, ",")
	} else if host, _, err := net.SplitHostPort(c.Request().RemoteAddr); err == nil {
		clientIP = host
	}
	return map[string]string{"message": "Hello World from client ip " + clientIP}, nil
}

func (h *OtherHandler) HelloName(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]string{"message": "Hello, " + utils.Title(in.String("name"))}, nil
}

func (h *OtherHandler) Commons(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]any{"q": in.Get("q"), "skip": in.Int("skip"), "limit": in.Int("limit")}, nil
}

func (h *OtherHandler) Portal(c echo.Context, in *validation.Bound) (any, error) {
	if in.Bool("teleport") {
		return Redirect{URL: portalURL}, nil
	}
	return map[string]string{"message": "Here's your interdimensional portal."}, nil
}

func (h *OtherHandler) KeywordWeights(c echo.Context, in *validation.Bound) (any, error) {
	out, failures := weightsOut.Validate(keywordWeights)
	if len(failures) > 0 {
		return nil, errors.Wrap(failures, "response does not match dict[str, float]")
	}
	return out, nil
}

func (h *OtherHandler) Login(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]string{"username": in.String("username")}, nil
}

func (h *OtherHandler) FileSizes(c echo.Context, in *validation.Bound) (any, error) {
	uploads := in.Uploads("files")
	sizes := make([]int64, 0, len(uploads))
	for _, u := range uploads {
		data, err := u.Bytes()
		if err != nil {
			return nil, errors.Wrapf(err, "read upload %s", u.Filename)
		}
		sizes = append(sizes, int64(len(data)))
	}
	return map[string][]int64{"file_sizes": sizes}, nil
}

func (h *OtherHandler) FileInfo(c echo.Context, in *validation.Bound) (any, error) {
	data, err := in.Upload("file").Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "read upload file")
	}
	return map[string]any{
		"file_size":          len(data),
		"token":              in.String("token"),
		"fileb_content_type": in.Upload("fileb").ContentType,
	}, nil
}

func (h *OtherHandler) FileNames(c echo.Context, in *validation.Bound) (any, error) {
	uploads := in.Uploads("files")
	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		names = append(names, u.Filename)
	}
	return map[string][]string{"filenames": names}, nil
}

func (h *OtherHandler) UploadForm(c echo.Context, in *validation.Bound) (any, error) {
	return fmt.Sprintf(uploadForm, h.server.Config.Server.RootPath), nil
}

func (h *OtherHandler) Names(c echo.Context, in *validation.Bound) (any, error) {
	fields := strings.Fields(in.String("args"))
	names := make([]string, 0, len(fields))
	for _, name := range fields {
		names = append(names, utils.Title(name))
	}
	return map[string]string{"message": "Hello " + strings.Join(names, ", ")}, nil
}

func (h *OtherHandler) Model(c echo.Context, in *validation.Bound) (any, error) {
	name := in.String("model_name")

	var message string
	switch name {
	case "alexnet":
		message = "Deep Learning FTW!"
	case "lenet":
		message = "LeCNN all the images"
	default:
		message = "Have some residuals"
	}
	return map[string]string{"model_name": name, "message": message}, nil
}

// Unicorn always fails with the custom unicorn kind.
func (h *OtherHandler) Unicorn(c echo.Context, in *validation.Bound) (any, error) {
	return nil, &UnicornError{Name: in.String("name")}
}
