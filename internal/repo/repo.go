package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"

	"gorm.io/gorm"
)

// Stores — Record Access Layer: по одному хранилищу на коллекцию.
type Stores struct {
	Devices   *DeviceStore
	Models    *ModelStore
	Tasks     *TaskStore
	Terminals *TerminalStore
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		Devices:   NewDeviceStore(db),
		Models:    NewModelStore(db),
		Tasks:     NewTaskStore(db),
		Terminals: NewTerminalStore(db),
	}
}

// Clock подменяется в тестах.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// translate приводит ошибку gorm к таксономии apperr.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf(notFound)
	}
	var inv *models.InvariantError
	if errors.As(err, &inv) {
		return apperr.Invalid(inv.Error())
	}
	return apperr.Data(err)
}

// ParseSelect разбирает projection вида "id,name,status".
// Пустая строка и "*" означают все колонки (nil).
func ParseSelect(sel string) []string {
	sel = strings.TrimSpace(sel)
	if sel == "" || sel == "*" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(sel, ",") {
		c = strings.TrimSpace(c)
		if c == "" || c == "*" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// checkColumns — колонки берём из схемы gorm, всё остальное отклоняем,
// чтобы в SELECT не попало ничего, кроме имён полей таблицы.
func checkColumns(db *gorm.DB, model any, cols []string) error {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return apperr.Data(err)
	}
	known := make(map[string]struct{}, len(stmt.Schema.DBNames))
	for _, n := range stmt.Schema.DBNames {
		known[n] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := known[c]; !ok {
			return apperr.Invalid(fmt.Sprintf("unknown column in select: %q", c))
		}
	}
	return nil
}

// project оставляет в каждой записи только выбранные поля (по JSON-именам,
// которые у нас совпадают с именами колонок).
func project[T any](rows []T, cols []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, apperr.Data(err)
		}
		var full map[string]any
		if err := json.Unmarshal(b, &full); err != nil {
			return nil, apperr.Data(err)
		}
		m := make(map[string]any, len(cols))
		for _, c := range cols {
			if v, ok := full[c]; ok {
				m[c] = v
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// listProjected — list с явной проекцией колонок.
func listProjected[T any](ctx context.Context, db *gorm.DB, cols []string, order string) ([]map[string]any, error) {
	var zero T
	if err := checkColumns(db, &zero, cols); err != nil {
		return nil, err
	}
	var rows []T
	if err := db.WithContext(ctx).Select(cols).Order(order).Find(&rows).Error; err != nil {
		return nil, apperr.Data(err)
	}
	return project(rows, cols)
}

// mergePatch накладывает JSON-патч на уже загруженную запись.
func mergePatch(dst any, patch []byte) error {
	if len(bytes.TrimSpace(patch)) == 0 {
		return apperr.Invalid("empty body")
	}
	if err := json.Unmarshal(patch, dst); err != nil {
		return apperr.Invalid("invalid body: " + err.Error())
	}
	return nil
}

// updateColumns — узкое обновление по id. Ноль затронутых строк ещё не значит
// «нет записи» (mysql не считает строки без изменений), поэтому перепроверяем.
func updateColumns(ctx context.Context, db *gorm.DB, model any, id uint, cols map[string]any, notFound string) error {
	tx := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(cols)
	if tx.Error != nil {
		return translate(tx.Error, notFound)
	}
	if tx.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Data(err)
	}
	if n == 0 {
		return apperr.NotFoundf(notFound)
	}
	return nil
}
