package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/pkg/task"
)

// parseListQuery reads status, sort, page and limit. An absent number stays
// zero so the use case applies its default; a malformed one becomes -1 so
// validation rejects it with the usual message.
func parseListQuery(c *fiber.Ctx) task.ListQuery {
	return task.ListQuery{
		Status: task.Status(strings.TrimSpace(c.Query("status"))),
		Sort:   strings.TrimSpace(c.Query("sort")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
}

func queryInt(c *fiber.Ctx, key string) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return -1
	}
	return n
}
