package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pollhive/api.pollhive.dev/directory"
	"github.com/pollhive/api.pollhive.dev/poll"
)

type Handlers struct {
	svc *poll.Service
	dir *directory.Directory
}

func (h *Handlers) GetUsers(c *fiber.Ctx) error {
	return c.JSON(h.dir.Users())
}

func (h *Handlers) GetPolls(c *fiber.Ctx) error {
	viewer := identityFrom(c)

	polls, err := h.svc.ListVisible(c.Context(), viewer)
	if err != nil {
		return err
	}

	for _, p := range polls {
		p.HideSecretFrom(viewer.Email)
	}
	return c.JSON(polls)
}

func (h *Handlers) GetPoll(c *fiber.Ctx) error {
	viewer := identityFrom(c)

	p, err := h.svc.Get(c.Context(), viewer, c.Params("id"), c.Query("secret"))
	if err != nil {
		return err
	}

	p.HideSecretFrom(viewer.Email)
	return c.JSON(p)
}

func (h *Handlers) CreatePoll(c *fiber.Ctx) error {
	draft := poll.Draft{}
	if err := c.BodyParser(&draft); err != nil {
		return badRequest(c)
	}

	p, err := h.svc.Create(c.Context(), identityFrom(c), draft)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) DeletePoll(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), identityFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handlers) AddUsers(c *fiber.Ctx) error {
	req := struct {
		Users []struct {
			Email string `json:"email"`
		} `json:"users"`
	}{}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	emails := make([]string, 0, len(req.Users))
	for _, u := range req.Users {
		emails = append(emails, u.Email)
	}

	p, err := h.svc.AddUsers(c.Context(), identityFrom(c), c.Params("id"), emails)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handlers) Vote(c *fiber.Ctx) error {
	req := struct {
		Values []string `json:"values"`
		Secret string   `json:"secret"`
	}{}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := h.svc.Vote(c.Context(), identityFrom(c), c.Params("id"), req.Values, req.Secret); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handlers) ClosePoll(c *fiber.Ctx) error {
	p, err := h.svc.Close(c.Context(), identityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request body",
	})
}
