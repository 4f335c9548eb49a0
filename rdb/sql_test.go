package rdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConnector(t *testing.T) {
	Convey("测试 Connector", t, func() {
		ctx := context.Background()

		Convey("第一次使用时才打开连接，之后复用", func() {
			connector, err := NewConnectorWithOptions(&SQLOptions{
				Driver:   "sqlite3",
				Database: filepath.Join(t.TempDir(), "orm.sqlite"),
			})
			So(err, ShouldBeNil)
			So(connector.Opened(), ShouldBeFalse)

			var wg sync.WaitGroup
			dbs := make([]*sql.DB, 8)
			for i := range dbs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					dbs[i], _ = connector.DB(ctx)
				}(i)
			}
			wg.Wait()

			So(connector.Opened(), ShouldBeTrue)
			for _, db := range dbs {
				So(db, ShouldNotBeNil)
				So(db, ShouldEqual, dbs[0])
			}
			So(connector.Close(), ShouldBeNil)
			So(connector.Opened(), ShouldBeFalse)
			So(connector.Close(), ShouldBeNil)
		})

		Convey("非法配置", func() {
			_, err := NewConnectorWithOptions(nil)
			So(err, ShouldNotBeNil)

			_, err = NewConnectorWithOptions(&SQLOptions{Driver: "postgres"})
			So(err, ShouldNotBeNil)

			connector, err := NewConnectorWithOptions(&SQLOptions{Driver: "sqlite3"})
			So(err, ShouldBeNil)
			_, err = connector.DB(ctx)
			So(err, ShouldNotBeNil)

			_, err = NewConnectorWithDB(nil, "sqlite3")
			So(err, ShouldNotBeNil)
		})

		Convey("DSN 构建", func() {
			dsn, err := (&SQLOptions{Driver: "mysql", Username: "u", Password: "p", Host: "h", Port: "3306", Database: "db", Charset: "utf8mb4"}).DataSourceName()
			So(err, ShouldBeNil)
			So(dsn, ShouldEqual, "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=True&loc=Local")

			dsn, err = (&SQLOptions{Driver: "sqlite", Database: "orm.sqlite"}).DataSourceName()
			So(err, ShouldBeNil)
			So(dsn, ShouldEqual, "orm.sqlite")

			dsn, err = (&SQLOptions{Driver: "mysql", DSN: "custom"}).DataSourceName()
			So(err, ShouldBeNil)
			So(dsn, ShouldEqual, "custom")
		})
	})
}
