package validator

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidateStruct(t *testing.T) {
	Convey("Validator 结构体校验测试", t, func() {
		type Store struct {
			Driver   string `validate:"oneof=sqlite3 sqlite mysql"`
			Database string `validate:"required"`
		}

		type Options struct {
			Name   string  `validate:"required"`
			Store  Store   `validate:"required"`
			Tables []Store `validate:"dive"`
		}

		Convey("有效的结构体校验", func() {
			err := ValidateStruct(&Options{
				Name:  "rdb",
				Store: Store{Driver: "sqlite3", Database: "orm.sqlite"},
			})
			So(err, ShouldBeNil)
		})

		Convey("校验失败 - 必填字段为空", func() {
			err := ValidateStruct(&Options{
				Store: Store{Driver: "sqlite3", Database: "orm.sqlite"},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("校验失败 - 枚举值错误", func() {
			err := ValidateStruct(Options{
				Name:  "rdb",
				Store: Store{Driver: "postgres", Database: "orm"},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("校验失败 - 切片元素", func() {
			err := ValidateStruct(&Options{
				Name:   "rdb",
				Store:  Store{Driver: "sqlite3", Database: "orm.sqlite"},
				Tables: []Store{{Driver: "sqlite3"}},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("nil 与非结构体直接通过", func() {
			var opts *Options
			So(ValidateStruct(nil), ShouldBeNil)
			So(ValidateStruct(opts), ShouldBeNil)
			So(ValidateStruct(42), ShouldBeNil)
		})
	})
}
