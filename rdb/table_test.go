package rdb

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type User struct {
	ID   int64
	Name string
	Age  int64
	Tags []string
	Seq  []int64
}

func (u *User) ToRecord() *Record {
	record := NewRecord(map[string]any{
		"name": u.Name,
		"age":  u.Age,
		"tags": u.Tags,
		"seq":  u.Seq,
	})
	if u.ID != 0 {
		id := u.ID
		record.ID = &id
	}
	return record
}

func (u *User) FromRecord(record *Record) error {
	if record.ID != nil {
		u.ID = *record.ID
	}
	var ok bool
	if u.Name, ok = record.Get("name").(string); !ok {
		return errors.Errorf("name: unexpected %T", record.Get("name"))
	}
	if u.Age, ok = record.Get("age").(int64); !ok {
		return errors.Errorf("age: unexpected %T", record.Get("age"))
	}
	if v := record.Get("tags"); v != nil {
		u.Tags = v.([]string)
	}
	if v := record.Get("seq"); v != nil {
		switch seq := v.(type) {
		case []int64:
			u.Seq = seq
		case []int:
			u.Seq = make([]int64, len(seq))
			for i, n := range seq {
				u.Seq[i] = int64(n)
			}
		}
	}
	return nil
}

func TestTable(t *testing.T) {
	Convey("测试 Table", t, func() {
		ctx := context.Background()
		users := NewTable(newTestEngine(t, "sqlite3"), newUserModel(), func() *User { return &User{} })
		So(users.Model().Table, ShouldEqual, "User")

		user := &User{Name: "John", Age: 25, Tags: []string{"1", "2", "3"}, Seq: []int64{3, 2, 1}}
		So(users.Save(ctx, user), ShouldBeNil)
		So(user.ID, ShouldEqual, 1)

		Convey("按主键读取", func() {
			found, ok, err := users.FindByID(ctx, 1)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(found, ShouldResemble, user)
		})

		Convey("不存在", func() {
			found, ok, err := users.FindByID(ctx, 999)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(found, ShouldBeNil)
		})

		Convey("更新", func() {
			user.Age = 26
			So(users.Save(ctx, user), ShouldBeNil)
			So(user.ID, ShouldEqual, 1)

			found, _, err := users.FindByID(ctx, 1)
			So(err, ShouldBeNil)
			So(found.Age, ShouldEqual, 26)
		})
	})
}
