package users

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

type AccountsControllerRoutes struct {
	Accounts  string
	Provision string
	Me        string
}

type AccountsController struct {
	Debug         bool
	Logger        Logger
	Repo          RepositoryManager
	Sessions      SessionStore
	Notifier      Notifier
	Routes        *AccountsControllerRoutes
	SessionCookie string
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger:        defLogger{},
		Notifier:      printNotifier{},
		SessionCookie: "session",
		Routes: &AccountsControllerRoutes{
			Accounts:  "/users",
			Provision: "/users/provision",
			Me:        "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Sessions == nil {
		panic("Missing SessionStore in accounts controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Repo = repo
		return c
	}
}

func WithControllerSessions(store SessionStore) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Sessions = store
		return c
	}
}

func WithControllerNotifier(n Notifier) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Notifier = n
		return c
	}
}

func WithControllerLogger(l Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Logger = l
		return c
	}
}

func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountsControllerOption) *AccountsController {
	controller := NewAccountsController(opts...)

	app.Post(controller.Routes.Provision, controller.BulkProvision).
		SetName("users.provision")
	app.Post(controller.Routes.Accounts, controller.Register).
		SetName("users.create")
	app.Get(controller.Routes.Accounts, controller.List).
		SetName("users.list")
	app.Get(fmt.Sprintf("%s/:id", controller.Routes.Accounts), controller.Show).
		SetName("users.show")

	app.Get(controller.Routes.Me, controller.Me).
		SetName("me.show")
	app.Put(controller.Routes.Me, controller.UpdateMe).
		SetName("me.update")
	app.Put(fmt.Sprintf("%s/password", controller.Routes.Me), controller.RotateMyCredential).
		SetName("me.password")
	app.Put(fmt.Sprintf("%s/mail", controller.Routes.Me), controller.ChangeMyMail).
		SetName("me.mail")
	app.Delete(controller.Routes.Me, controller.DeleteMe).
		SetName("me.delete")

	return controller
}

func (c *AccountsController) Register(ctx router.Context) error {
	payload := new(CreateAccountPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("register account parse payload: ", "error", err)
		return c.respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "error parsing body"))
	}

	if c.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	var account *Account

	msg := RegisterAccountMessage{
		Name:        payload.Name,
		Surname:     payload.Surname,
		Mail:        payload.Mail,
		Password:    payload.Password,
		Description: payload.Description,
		Residence:   payload.Residence,
		Birthdate:   payload.Birthdate,
		Session:     ctx.Cookies(c.SessionCookie),
		OnResponse: func(a *Account) {
			account = a
		},
	}

	handler := NewRegisterAccountHandler(c.Repo, c.Sessions).
		WithNotifier(c.Notifier).
		WithLogger(c.Logger)

	if err := handler.Execute(ctx.Context(), msg); err != nil {
		c.Logger.Error("register account: ", "error", err)
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, account)
}

// BulkProvisionPayload is the bulk provisioning body
type BulkProvisionPayload struct {
	Descriptors []ProvisioningDescriptor `json:"descriptors"`
}

func (c *AccountsController) BulkProvision(ctx router.Context) error {
	caller, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	payload := new(BulkProvisionPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("bulk provision parse payload: ", "error", err)
		return c.respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "error parsing body"))
	}

	handler := NewBulkProvisionHandler(c.Repo).
		WithNotifier(c.Notifier).
		WithLogger(c.Logger)

	msg := BulkProvisionMessage{
		Descriptors: payload.Descriptors,
		ActorType:   caller.Type,
	}

	if err := handler.Execute(ctx.Context(), msg); err != nil {
		c.Logger.Error("bulk provision: ", "error", err)
		return c.respondError(ctx, err)
	}

	// intentional fire and forget bulk job: the acknowledgment does not wait
	// for any item, and no aggregate result is reported back
	return ctx.JSON(router.StatusAccepted, map[string]any{
		"accepted": len(payload.Descriptors),
	})
}

func (c *AccountsController) Show(ctx router.Context) error {
	if _, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie)); err != nil {
		return c.respondError(ctx, err)
	}

	id := ctx.Param("id")

	account, err := c.Repo.Accounts().GetByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return c.respondError(ctx, ErrAccountNotFound)
		}
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, account)
}

func (c *AccountsController) List(ctx router.Context) error {
	caller, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	if !caller.Type.IsAdministrative() {
		return c.respondError(ctx, ErrAdminRequired)
	}

	records, err := c.Repo.Accounts().ListAll(ctx.Context())
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"accounts": records,
	})
}

func (c *AccountsController) Me(ctx router.Context) error {
	account, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, account)
}

func (c *AccountsController) UpdateMe(ctx router.Context) error {
	account, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	payload := new(UpdateAccountPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("update profile parse payload: ", "error", err)
		return c.respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "error parsing body"))
	}

	var updated *Account

	handler := NewUpdateProfileHandler(c.Repo)
	msg := UpdateProfileMessage{
		AccountID: account.ID,
		Payload:   *payload,
		OnResponse: func(a *Account) {
			updated = a
		},
	}

	if err := handler.Execute(ctx.Context(), msg); err != nil {
		c.Logger.Error("update profile: ", "error", err)
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

// RotateCredentialPayload carries the replacement password
type RotateCredentialPayload struct {
	Password string `form:"password" json:"password"`
}

func (c *AccountsController) RotateMyCredential(ctx router.Context) error {
	account, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	payload := new(RotateCredentialPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("rotate credential parse payload: ", "error", err)
		return c.respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "error parsing body"))
	}

	handler := NewRotateCredentialHandler(c.Repo)
	msg := RotateCredentialMessage{
		AccountID: account.ID,
		Password:  payload.Password,
	}

	if err := handler.Execute(ctx.Context(), msg); err != nil {
		c.Logger.Error("rotate credential: ", "error", err)
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "password updated",
	})
}

func (c *AccountsController) ChangeMyMail(ctx router.Context) error {
	account, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	handler := NewChangeMailHandler()
	msg := ChangeMailMessage{AccountID: account.ID}

	return c.respondError(ctx, handler.Execute(ctx.Context(), msg))
}

func (c *AccountsController) DeleteMe(ctx router.Context) error {
	account, err := ResolveAccount(ctx.Context(), c.Sessions, c.Repo, ctx.Cookies(c.SessionCookie))
	if err != nil {
		return c.respondError(ctx, err)
	}

	handler := NewDeleteAccountHandler(c.Repo, c.Sessions)
	msg := DeleteAccountMessage{
		AccountID: account.ID,
		Session:   ctx.Cookies(c.SessionCookie),
	}

	if err := handler.Execute(ctx.Context(), msg); err != nil {
		c.Logger.Error("delete account: ", "error", err)
		return c.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "account deleted",
	})
}

func (c *AccountsController) respondError(ctx router.Context, err error) error {
	if goerrors.Is(err, ErrMailChangeNotImplemented) {
		return ctx.JSON(fiber.StatusNotImplemented, map[string]string{
			"error":     ErrMailChangeNotImplemented.Message,
			"text_code": TextCodeMailChange,
		})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "an unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		// wrapped errors carry a category but not always a code
		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			status = fiber.StatusBadRequest
		case goerrors.CategoryAuth:
			status = fiber.StatusUnauthorized
		case goerrors.CategoryAuthz:
			status = fiber.StatusForbidden
		case goerrors.CategoryNotFound:
			status = fiber.StatusNotFound
		case goerrors.CategoryConflict:
			status = fiber.StatusConflict
		default:
			status = fiber.StatusInternalServerError
		}
	}

	body := map[string]string{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}
