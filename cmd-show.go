package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/worldofcode/wocread/decode"
	"github.com/worldofcode/wocread/jsonbuilder"
	"github.com/worldofcode/wocread/profile"
	"github.com/worldofcode/wocread/query"
)

func newCmd_Show() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "decode a tree, commit, or blob object by hash",
		UsageText: "wocread show <tree|commit|blob> <hash>",
		Description: "Implements show_content(object_name, key): fetches the " +
			"object's raw bytes, tries LZF decompression, and decodes per " +
			"the object kind.",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("usage: wocread show <tree|commit|blob> <hash>")
			}
			objectName := c.Args().Get(0)
			key := c.Args().Get(1)

			p, err := profile.Load(profilePaths(c)...)
			if err != nil {
				return err
			}
			eng := query.New(p)

			val, err := eng.ShowContent(objectName, key)
			if err != nil {
				return err
			}

			return renderShowContent(c, val)
		},
	}
}

func renderShowContent(c *cli.Context, val any) error {
	if c.Bool("json") {
		obj, err := showContentToJSON(val)
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
	case []decode.TreeEntry:
		for _, e := range v {
			fmt.Printf("%s %s\t%s\n", e.Mode, e.HashHex, e.Filename)
		}
	case *decode.Commit:
		fmt.Printf("tree %s\n", v.Tree)
		for _, par := range v.Parents {
			fmt.Printf("parent %s\n", par)
		}
		fmt.Printf("author %s %s %s\n", v.Author.Name, v.Author.Timestamp, v.Author.Timezone)
		fmt.Printf("committer %s %s %s\n", v.Committer.Name, v.Committer.Timestamp, v.Committer.Timezone)
		fmt.Println()
		fmt.Print(v.Message)
	case string:
		fmt.Print(v)
	default:
		fmt.Println(v)
	}
	return nil
}

// showContentToJSON renders a show_content result through jsonbuilder,
// matching valueToJSON's get_values rendering for consistent CLI output.
func showContentToJSON(val any) (*jsonbuilder.OrderedJSONObject, error) {
	switch v := val.(type) {
	case []decode.TreeEntry:
		arr := jsonbuilder.NewArray()
		for _, e := range v {
			arr.AddObject(jsonbuilder.NewObject().
				String("mode", e.Mode).String("filename", e.Filename).String("hash", e.HashHex))
		}
		return jsonbuilder.NewObject().Array("entries", arr), nil
	case *decode.Commit:
		parents := jsonbuilder.NewArray()
		for _, par := range v.Parents {
			parents.AddString(par)
		}
		return jsonbuilder.NewObject().
			String("tree", v.Tree).
			Array("parents", parents).
			Object("author", identityJSON(v.Author)).
			Object("committer", identityJSON(v.Committer)).
			String("message", v.Message), nil
	case string:
		return jsonbuilder.NewObject().String("content", v), nil
	default:
		return jsonbuilder.NewObject().Value("content", v), nil
	}
}

func identityJSON(id decode.Identity) *jsonbuilder.OrderedJSONObject {
	return jsonbuilder.NewObject().
		String("name", id.Name).
		String("timestamp", id.Timestamp).
		String("timezone", id.Timezone)
}
