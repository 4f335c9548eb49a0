package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hatlonely/modelx/rdb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDemoCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Save a User, read it back and look up a missing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions(*deps.configPath)
			if err != nil {
				return err
			}
			if err := removeStoreFile(&options.Store); err != nil {
				return err
			}
			model, err := options.model("User")
			if err != nil {
				return err
			}

			return withRepository(cmd.Context(), deps, options, func(ctx context.Context, repo rdb.Repository) error {
				record := rdb.NewRecord(map[string]any{
					"name": "John",
					"age":  25,
					"tags": []string{"1", "2", "3"},
					"seq":  []int{3, 2, 1},
				})
				if _, err := repo.Save(ctx, model, record); err != nil {
					return err
				}
				fmt.Fprintf(deps.out, "saved %s id=%d\n", model.Table, *record.ID)

				for _, id := range []int64{*record.ID, 999} {
					found, err := repo.FindByID(ctx, model, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(deps.out, "find %s id=%d: ", model.Table, id)
					if err := printRecord(deps.out, found); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newSaveCommand(deps commandDeps) *cobra.Command {
	var (
		modelName string
		data      string
		id        int64
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Insert a record, or update it when --id is given",
		Example: "  modelx save --model User --data '{\"name\":\"John\",\"age\":25,\"tags\":[\"a\"]}'\n" +
			"  modelx save --model User --id 1 --data '{\"name\":\"Jane\",\"age\":26}'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions(*deps.configPath)
			if err != nil {
				return err
			}
			model, err := options.model(modelName)
			if err != nil {
				return err
			}
			values, err := parseValues(data)
			if err != nil {
				return err
			}

			record := rdb.NewRecord(values)
			if cmd.Flags().Changed("id") {
				record.ID = &id
			}
			return withRepository(cmd.Context(), deps, options, func(ctx context.Context, repo rdb.Repository) error {
				saved, err := repo.Save(ctx, model, record)
				if err != nil {
					return err
				}
				return printRecord(deps.out, saved)
			})
		},
	}
	cmd.Flags().StringVar(&modelName, "model", "User", "Model table name")
	cmd.Flags().StringVar(&data, "data", "{}", "Field values as a JSON object")
	cmd.Flags().Int64Var(&id, "id", 0, "Identity of the record to update")
	return cmd
}

func newFindCommand(deps commandDeps) *cobra.Command {
	var (
		modelName string
		id        int64
	)
	cmd := &cobra.Command{
		Use:     "find",
		Short:   "Find a record by identity",
		Example: "  modelx find --model User --id 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("id") {
				return errors.New("find requires --id")
			}
			options, err := loadOptions(*deps.configPath)
			if err != nil {
				return err
			}
			model, err := options.model(modelName)
			if err != nil {
				return err
			}
			return withRepository(cmd.Context(), deps, options, func(ctx context.Context, repo rdb.Repository) error {
				found, err := repo.FindByID(ctx, model, id)
				if err != nil {
					return err
				}
				return printRecord(deps.out, found)
			})
		},
	}
	cmd.Flags().StringVar(&modelName, "model", "User", "Model table name")
	cmd.Flags().Int64Var(&id, "id", 0, "Record identity")
	return cmd
}

// parseValues 数字保留为 json.Number，由字段类型决定最终取值
func parseValues(data string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.UseNumber()
	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, errors.Wrap(err, "parse --data failed")
	}
	return values, nil
}

// printRecord 以 JSON 输出记录，记录不存在时输出 null
func printRecord(out io.Writer, record *rdb.Record) error {
	if record == nil {
		_, err := fmt.Fprintln(out, "null")
		return err
	}
	m := make(map[string]any, len(record.Values)+1)
	for k, v := range record.Values {
		m[k] = v
	}
	if record.ID != nil {
		m[rdb.IdentityColumn] = *record.ID
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "json.Marshal failed")
	}
	_, err = fmt.Fprintln(out, string(buf))
	return err
}

// removeStoreFile demo 每次从空的 sqlite 文件开始
func removeStoreFile(options *rdb.SQLOptions) error {
	if options.DSN != "" || (options.Driver != "sqlite3" && options.Driver != "sqlite") {
		return nil
	}
	if err := os.Remove(options.Database); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s failed", options.Database)
	}
	return nil
}
