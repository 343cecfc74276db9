package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/worldofcode/wocread/decode"
	"github.com/worldofcode/wocread/jsonbuilder"
	"github.com/worldofcode/wocread/profile"
	"github.com/worldofcode/wocread/query"
)

func newCmd_Get() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "look up values for a map name and key",
		UsageText: "wocread get <map-name> <key>",
		Description: "Implements get_values(map_name, key): resolves the map, " +
			"normalizes the key, fetches the raw bytes (shard or large-file " +
			"spill), and decodes per the map's out-dtype.",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("usage: wocread get <map-name> <key>")
			}
			mapName := c.Args().Get(0)
			key := c.Args().Get(1)

			p, err := profile.Load(profilePaths(c)...)
			if err != nil {
				return err
			}
			eng := query.New(p)

			val, err := eng.GetValues(mapName, key)
			if err != nil {
				return err
			}

			return renderValue(c, val)
		},
	}
}

func profilePaths(c *cli.Context) []string {
	if path := c.String("profile"); path != "" {
		return []string{path}
	}
	return nil
}

func renderValue(c *cli.Context, val any) error {
	if c.Bool("json") {
		obj, err := valueToJSON(val)
		if err != nil {
			return err
		}
		b, err := obj.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	switch v := val.(type) {
	case []string:
		for _, s := range v {
			fmt.Println(s)
		}
	case [][3]string:
		for _, t := range v {
			fmt.Printf("%s\t%s\t%s\n", t[0], t[1], t[2])
		}
	case decode.ShRecord:
		fmt.Printf("%s\t%s\t%s\n", v.Time, v.Author, v.HashHex)
	case decode.Pointer:
		fmt.Printf("%s\t%d\t%d\n", v.HashHex, v.Offset, v.Length)
	case []byte:
		fmt.Println(string(v))
	default:
		fmt.Println(v)
	}
	return nil
}

// valueToJSON renders a get_values result through jsonbuilder, preserving
// field order for the record-shaped tags (sh, r) instead of relying on
// encoding/json's struct-tag-driven (but still map-like) output.
func valueToJSON(val any) (*jsonbuilder.OrderedJSONObject, error) {
	switch v := val.(type) {
	case []string:
		arr := jsonbuilder.NewArray()
		for _, s := range v {
			arr.AddString(s)
		}
		return jsonbuilder.NewObject().Array("values", arr), nil
	case [][3]string:
		arr := jsonbuilder.NewArray()
		for _, t := range v {
			arr.AddObject(jsonbuilder.NewObject().
				String("a", t[0]).String("b", t[1]).String("c", t[2]))
		}
		return jsonbuilder.NewObject().Array("values", arr), nil
	case decode.ShRecord:
		return jsonbuilder.NewObject().
			String("time", v.Time).String("author", v.Author).String("hash", v.HashHex), nil
	case decode.Pointer:
		return jsonbuilder.NewObject().
			String("hash", v.HashHex).Uint("offset", v.Offset).Uint("length", v.Length), nil
	case []byte:
		return jsonbuilder.NewObject().String("raw", string(v)), nil
	default:
		return jsonbuilder.NewObject().Value("value", v), nil
	}
}
