package kv

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mount-tech/typedb/lib/value"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			typ, _ := cmd.Flags().GetString("type")
			val, err := parseValue(args[1], typ)
			if err != nil {
				return err
			}
			if err := kvStore.Insert(key, val); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := kvStore.Get(key); err != nil {
				return err
			} else if ok {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			} else {
				fmt.Printf("key=%s, found=%v\n", key, ok)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := kvStore.Remove(key); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if ok, err := kvStore.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v\n", key, ok)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys (sorted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := kvStore.Keys()
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints the whole store as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := kvStore.Snapshot()
			if err != nil {
				return err
			}
			out, err := dumpJSON(m)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key]",
		Short: "Atomically increments an integer value (a missing key counts as 0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			by, _ := cmd.Flags().GetInt64("by")

			var result int64
			err := kvStore.Update(func(m map[string]value.Value) error {
				n, err := increment(m, key, by)
				result = n
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, value=%d\n", key, result)
			return nil
		},
	}
)

func init() {
	setCmd.Flags().String("type", "string", "Type of the value (string, int, float, json)")
	incrCmd.Flags().Int64("by", 1, "Amount to add")
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseValue converts a command line argument to a value of the given type
func parseValue(raw, typ string) (value.Value, error) {
	switch typ {
	case "string", "":
		return value.String(raw), nil
	case "int":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("value must be an integer: %w", err)
		}
		return value.Int(i), nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("value must be a number: %w", err)
		}
		return value.Float(f), nil
	case "json":
		v, err := value.ParseJSON([]byte(raw))
		if err != nil {
			return value.Value{}, fmt.Errorf("value must be valid json: %w", err)
		}
		return v, nil
	default:
		return value.Value{}, fmt.Errorf("invalid type %s (expected one of: string, int, float, json)", typ)
	}
}

// increment adds by to the integer stored under key and returns the new value
func increment(m map[string]value.Value, key string, by int64) (int64, error) {
	var n int64
	if cur, ok := m[key]; ok {
		i, isInt := cur.AsInt()
		if !isInt {
			return 0, fmt.Errorf("value of %s is not an integer: %s", key, cur)
		}
		n = i
	}
	n += by
	m[key] = value.Int(n)
	return n, nil
}

// dumpJSON renders a snapshot as indented plain JSON with sorted keys
func dumpJSON(m map[string]value.Value) ([]byte, error) {
	plain := make(map[string]interface{}, len(m))
	for k, v := range m {
		plain[k] = v.Interface()
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  ", SortKeys: true}), nil
}
