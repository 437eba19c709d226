package dao

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrSelfVote 触发器拒绝给自己的图片投票
	ErrSelfVote = errors.New("self vote rejected by storage")
	// ErrDuplicateVote 唯一键冲突
	ErrDuplicateVote = errors.New("vote already exists")
	// ErrVoteConstraint 其他约束冲突，比如图片已被物理删除
	ErrVoteConstraint = errors.New("vote violates storage constraint")
)

const (
	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
	mysqlSignalException  = 1644
	selfVoteSignalMessage = "SELF_VOTE"
)

// translateVoteError 把存储层约束冲突翻译成领域可识别的错误
func translateVoteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVote
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return ErrVoteConstraint
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch {
		case me.Number == mysqlDuplicateEntry:
			return ErrDuplicateVote
		case me.Number == mysqlNoReferencedRow:
			return ErrVoteConstraint
		case me.Number == mysqlSignalException && strings.Contains(me.Message, selfVoteSignalMessage):
			return ErrSelfVote
		}
	}
	if strings.Contains(err.Error(), selfVoteSignalMessage) {
		return ErrSelfVote
	}
	return err
}
