package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"hostel-backend/internal/domain"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// storeErr maps driver failures onto the domain taxonomy. Typed domain errors
// and ErrStaleBed pass through unchanged.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStaleBed) ||
		domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsValidation(err) || domain.IsUnavailable(err) {
		return err
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return domain.ConflictError{Resource: op, Code: duplicateCode(me.Message), Msg: "duplicate entry", Err: err}
	}
	return domain.UnavailableError{Op: op, Err: err}
}

// bedWriteErr is storeErr for the version-checked bed writes. InnoDB rolls the
// whole transaction back on a deadlock or lock wait timeout, so those surface
// as ErrStaleBed and the caller retries them like a version conflict.
func bedWriteErr(op string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout) {
		return ErrStaleBed
	}
	return storeErr(op, err)
}

func duplicateCode(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "uq_hostlers_phone"), strings.Contains(msg, "uq_users_phone"):
		return domain.CodeDuplicatePhone
	case strings.Contains(msg, "uq_hostlers_aadhar"):
		return domain.CodeDuplicateAadhar
	case strings.Contains(msg, "uq_rooms_room_number"):
		return domain.CodeDuplicateRoomNumber
	case strings.Contains(msg, "uq_beds_room_bed"):
		return domain.CodeInvalidBeds
	}
	return ""
}
