package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/lib/utils"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	itemToken = "fake_super_secret_token"
	itemKey   = "fake_super_secret_key"

	longDescription = "This is an amazing item that has a long description"
)

var itemIDPrefixes = []string{"isbn-", "imdb-"}

var fakeItems = []map[string]string{{"item_name": "Foo"}, {"item_name": "Bar"}, {"item_name": "Baz"}}

// ownedItems backs the scoped-username endpoint.
var ownedItems = map[string]map[string]string{
	"plumbus":    {"description": "Freshly pickled plumbus", "owner": "Morty"},
	"portal_gun": {"description": "Gun to create portals", "owner": "Rick"},
}

// OwnerError is raised by an endpoint while the scoped username is held; releasing the scope
// turns it into a 400.
type OwnerError struct {
	Owner string
}

func (e *OwnerError) Error() string { return e.Owner }

func checkItemID(value any, _ schema.Values) error {
	id, _ := value.(string)
	for _, p := range itemIDPrefixes {
		if strings.HasPrefix(id, p) {
			return nil
		}
	}
	return fmt.Errorf("Invalid item_id format, it must start with ('%s')", strings.Join(itemIDPrefixes, "', '"))
}

func itemQuery() *schema.Field {
	return schema.String("q",
		schema.Optional(),
		schema.MinLength(3),
		schema.MaxLength(15),
		schema.Title("Query string"),
		schema.Describe("Query string for the items to search in the database that have a good match"),
		schema.Deprecated(),
	)
}

var (
	itemClassPlan = validation.NewPlan("view_item_class",
		validation.Body(schema.Object("item", model.FirstItem)),
	)

	datesPlan = validation.NewPlan("read_dates_items",
		validation.Path(schema.UUID("item_id")),
		validation.Query(schema.Timestamp("start_datetime")),
		validation.Body(schema.Timestamp("end_datetime")),
		validation.Body(schema.Duration("process_after")),
		validation.Body(schema.Time("repeat_at", schema.Optional())),
	)

	offerPlan = validation.NewPlan("create_offer",
		validation.Body(schema.Object("offer", model.Offer)),
	)

	imagesPlan = validation.NewPlan("create_multiple_images",
		validation.Body(schema.List("images", schema.Object("", model.Image))),
	)

	weightsPlan = validation.NewPlan("create_index_weights",
		validation.Body(schema.Map("weights", schema.Int(""), schema.Float(""))),
	)

	cacheItemPlan = validation.NewPlan("create_redis_item",
		validation.Body(schema.Object("item", model.Item)),
	)

	itemKeyPathPlan = validation.NewPlan("get_redis_item",
		validation.Path(schema.String("item_key")),
	)

	itemKeyQueryPlan = validation.NewPlan("pop_redis_item",
		validation.Query(schema.String("item_key")),
	)

	updateItemPlan = validation.NewPlan("update_item",
		validation.Path(schema.Int("item_id", schema.Ge(0), schema.Le(50))),
		validation.Body(schema.Object("item", model.Item)),
		validation.Query(itemQuery()),
	)

	updateItem2Plan = validation.NewPlan("update_item_2",
		validation.Path(schema.Int("item_id")),
		validation.Body(schema.Object("item", model.Item), validation.Embed()),
		validation.Query(schema.String("q", schema.Optional())),
	)

	putItemPlan = validation.NewPlan("put_item",
		validation.Path(schema.Int("item_id")),
		validation.Body(schema.Object("item", model.Item), validation.Embed()),
	)

	listItemsPlan = validation.NewPlan("list_items",
		validation.Query(
			schema.List("q", schema.String(""),
				schema.MinLength(2), schema.MaxLength(2),
				schema.Default([]any{"default", "query"}),
			),
			validation.Alias("item-query"),
		),
	)

	latestItemPlan = validation.NewPlan("read_last_item",
		validation.Query(schema.List("q", schema.String(""),
			schema.MinLength(2), schema.MaxLength(2),
			schema.Default([]any{"foo", "bar"}),
			schema.Title("Query string"),
			schema.Describe("Query string for the items to search in the database that have a good match"),
		)),
	)

	cookiePlan = validation.NewPlan("read_cookie_items",
		validation.Cookie(schema.String("ads_id", schema.Optional())),
	)

	headerPlan = validation.NewPlan("read_header_items",
		validation.Header(schema.String("user_agent", schema.Optional())),
	)

	pathDependsPlan = validation.NewPlan("read_items_path_depends",
		validation.Header(schema.String("x_token")),
		validation.Header(schema.String("x_key")),
	)

	commonsPlan = validation.NewPlan("read_items",
		validation.Query(schema.String("q", schema.Optional())),
		validation.Query(schema.Int("skip", schema.Default(0))),
		validation.Query(schema.Int("limit", schema.Default(100))),
	)

	ownedItemPlan = validation.NewPlan("get_item_by_username",
		validation.Path(schema.String("item_id")),
	)

	getItemPlan = validation.NewPlan("get_item",
		validation.Path(schema.String("item_id", schema.Check("item_id_prefix", checkItemID))),
		validation.Query(schema.String("q", schema.Optional(), schema.Pattern("[a-zA-Zйцуке][^0-9]123$"))),
	)

	var2Plan = validation.NewPlan("read_item",
		validation.Path(schema.String("item_id")),
		validation.Query(schema.String("q", schema.Optional(), schema.Default("fixedquery"))),
		validation.Query(schema.Bool("short", schema.Default(false))),
	)
)

type ItemHandler struct {
	Handler
	items *service.ItemService
}

func NewItemHandler(s *server.Server, items *service.ItemService) *ItemHandler {
	return &ItemHandler{
		Handler: NewHandler(s),
		items:   items,
	}
}

func (h *ItemHandler) Routes() []Route {
	return tagged("items",
		h.route(http.MethodPost, "/items/item_class/", itemClassPlan, h.ItemClass, http.StatusOK),
		h.route(http.MethodPut, "/items/dates/:item_id", datesPlan, h.Dates, http.StatusOK),
		h.route(http.MethodPost, "/items/offers/", offerPlan, h.CreateOffer, http.StatusOK),
		h.route(http.MethodPost, "/items/short_offers_info/", offerPlan, h.CreateShortOffer, http.StatusOK),
		h.route(http.MethodPost, "/items/images/multiple/", imagesPlan, h.CreateImages, http.StatusOK),
		h.route(http.MethodPost, "/items/index-weights/", weightsPlan, h.CreateIndexWeights, http.StatusOK),
		h.route(http.MethodPost, "/items/create_redis_item/", cacheItemPlan, h.CacheItem, http.StatusOK),
		h.route(http.MethodGet, "/items/get_redis_item/:item_key", itemKeyPathPlan, h.LookupItem, http.StatusOK),
		h.route(http.MethodDelete, "/items/delete_redis_item/", itemKeyQueryPlan, h.PopItem, http.StatusOK),
		h.route(http.MethodPut, "/items/update/:item_id", updateItemPlan, h.UpdateItem, http.StatusOK),
		h.route(http.MethodPut, "/items/update2/:item_id/", updateItem2Plan, h.UpdateItem, http.StatusOK),
		h.route(http.MethodPut, "/items/put/:item_id", putItemPlan, h.PutItem, http.StatusOK),
		h.route(http.MethodGet, "/items/", listItemsPlan, h.ListItems, http.StatusOK),
		h.route(http.MethodGet, "/items/latest/", latestItemPlan, h.LatestItem, http.StatusOK),
		h.route(http.MethodGet, "/items/cookie/", cookiePlan, h.ReadCookie, http.StatusOK),
		h.route(http.MethodGet, "/items/header/", headerPlan, h.ReadHeader, http.StatusOK),
		h.route(http.MethodGet, "/items/items-path-depends/", pathDependsPlan, h.PathDepends, http.StatusOK),
		h.route(http.MethodGet, "/items/items-dep/", commonsPlan, h.ItemsDep, http.StatusOK),
		h.route(http.MethodGet, "/items/yield-exc/:item_id", ownedItemPlan,
			Scoped(currentUsername, releaseUsername, h.OwnedItem), http.StatusOK),
		h.route(http.MethodGet, "/items/var2/:item_id", var2Plan, h.ReadItem, http.StatusOK),
		h.route(http.MethodGet, "/items/:item_id", getItemPlan, h.GetItem, http.StatusOK),
	)
}

func (h *ItemHandler) ItemClass(c echo.Context, in *validation.Bound) (any, error) {
	item := in.Object("item")
	return item.
		With("title", utils.Title(item.String("title"))).
		With("size", item.Int("size")+50), nil
}

func (h *ItemHandler) Dates(c echo.Context, in *validation.Bound) (any, error) {
	start := in.Time("start_datetime")
	end := in.Time("end_datetime")
	after := in.Duration("process_after")

	startProcess := start.Add(after)

	var repeatAt any
	if in.Get("repeat_at") != nil {
		repeatAt = in.TimeOfDay("repeat_at").String()
	}

	return map[string]any{
		"item_id":        in.UUID("item_id").String(),
		"start_datetime": start,
		"end_datetime":   end,
		"repeat_at":      repeatAt,
		"process_after":  schema.FormatISODuration(after),
		"start_process":  startProcess,
		"duration":       schema.FormatISODuration(end.Sub(startProcess)),
	}, nil
}

// offerTotal is the sum of the item prices.
func offerTotal(offer *schema.Instance) float64 {
	total := decimal.Zero
	for _, raw := range offer.List("items") {
		total = total.Add(decimal.NewFromFloat(raw.(*schema.Instance).Float("price")))
	}
	return total.InexactFloat64()
}

func (h *ItemHandler) CreateOffer(c echo.Context, in *validation.Bound) (any, error) {
	offer := in.Object("offer")
	out := offer.With("price", offerTotal(offer)).Dump()
	out["extra"] = "extra_field"
	return out, nil
}

func (h *ItemHandler) CreateShortOffer(c echo.Context, in *validation.Bound) (any, error) {
	offer := in.Object("offer")
	return schema.Assemble(model.ShortOffer, schema.Values{
		"name":        offer.Get("name"),
		"description": offer.Get("description"),
		"price":       offerTotal(offer),
	}, []string{"name", "description", "price"}), nil
}

func (h *ItemHandler) CreateImages(c echo.Context, in *validation.Bound) (any, error) {
	return in.List("images"), nil
}

func (h *ItemHandler) CreateIndexWeights(c echo.Context, in *validation.Bound) (any, error) {
	return in.Map("weights"), nil
}

func (h *ItemHandler) CacheItem(c echo.Context, in *validation.Bound) (any, error) {
	return h.items.CacheItem(c.Request().Context(), in.Object("item"))
}

func (h *ItemHandler) LookupItem(c echo.Context, in *validation.Bound) (any, error) {
	return h.items.Lookup(c.Request().Context(), in.String("item_key"))
}

func (h *ItemHandler) PopItem(c echo.Context, in *validation.Bound) (any, error) {
	return h.items.Pop(c.Request().Context(), in.String("item_key"))
}

// UpdateItem normalizes the item, adds its tax to the price and echoes q reversed.
func (h *ItemHandler) UpdateItem(c echo.Context, in *validation.Bound) (any, error) {
	item := h.items.Normalize(in.Object("item"), 5)
	if tax := item.Float("tax"); tax != 0 {
		gross := decimal.NewFromFloat(item.Float("price")).Add(decimal.NewFromFloat(tax))
		item = item.With("price", gross.InexactFloat64())
	}

	out := item.Dump()
	out["item_id"] = in.Int("item_id")
	if q := in.String("q"); q != "" {
		out["q"] = utils.Reverse(q)
	}
	return out, nil
}

func (h *ItemHandler) PutItem(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]any{"item_id": in.Int("item_id"), "item": in.Object("item")}, nil
}

func (h *ItemHandler) ListItems(c echo.Context, in *validation.Bound) (any, error) {
	return append(in.Strings("q"), "string1", "string2"), nil
}

func (h *ItemHandler) LatestItem(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]any{"item_id": "latest", "q": in.Strings("q")}, nil
}

func (h *ItemHandler) ReadCookie(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]any{"ads_id": in.Get("ads_id")}, nil
}

func (h *ItemHandler) ReadHeader(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]any{"User-Agent": in.Get("user_agent")}, nil
}

func (h *ItemHandler) PathDepends(c echo.Context, in *validation.Bound) (any, error) {
	if in.String("x_token") != itemToken {
		return nil, errs.NewBadRequestError("X-Token header invalid")
	}
	if in.String("x_key") != itemKey {
		return nil, errs.NewBadRequestError("X-Key header invalid")
	}
	return []map[string]string{{"item": "Foo"}, {"key": "Bar"}}, nil
}

func (h *ItemHandler) ItemsDep(c echo.Context, in *validation.Bound) (any, error) {
	out := map[string]any{"items": window(fakeItems, in.Int("skip"), in.Int("limit"))}
	if q := in.String("q"); q != "" {
		out["q"] = q
	}
	return out, nil
}

// window returns items[skip:skip+limit], clamped to the slice.
func window[T any](items []T, skip, limit int64) []T {
	n := int64(len(items))
	from := min(max(skip, 0), n)
	to := min(max(from+limit, from), n)
	return items[from:to]
}

func currentUsername(c echo.Context) (string, error) {
	return "Rick", nil
}

func releaseUsername(c echo.Context, username string, err error) error {
	var ownerErr *OwnerError
	if errors.As(err, &ownerErr) {
		return errs.NewBadRequestError("Owner error: " + ownerErr.Owner)
	}
	return err
}

func (h *ItemHandler) OwnedItem(c echo.Context, in *validation.Bound, username string) (any, error) {
	item, ok := ownedItems[in.String("item_id")]
	if !ok {
		return nil, errs.NewNotFoundDetail("Item not found")
	}
	if item["owner"] != username {
		return nil, &OwnerError{Owner: username}
	}
	return item, nil
}

func (h *ItemHandler) ReadItem(c echo.Context, in *validation.Bound) (any, error) {
	item := map[string]string{"item_id": in.String("item_id")}
	if q := in.String("q"); q != "" {
		item["q"] = q
	}
	if !in.Bool("short") {
		item["description"] = longDescription
	}
	return item, nil
}

func (h *ItemHandler) GetItem(c echo.Context, in *validation.Bound) (any, error) {
	id := in.String("item_id")
	if id == "isbn-abc" {
		return nil, errs.NewConflictError(http.StatusTeapot, "Nope! I don't like ABC.")
	}

	out := map[string]string{"item_id": id}
	if q := in.String("q"); q != "" {
		out["q"] = q
	}
	return out, nil
}
