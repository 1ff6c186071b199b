package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/koru3d/gpu/shaderpack"
)

func init() {
	if u, err := user.Current(); err == nil {
		currentUserName = u.Name
	} else {
		currentUserName = "unknown"
	}
}

var (
	currentUserName string
	author          = flag.String("author", currentUserName, "Set the author of the pack when packing")
	version         = flag.Int64("version", 1, "Pack version number to create it with")
	pack            = flag.String("p", "", "Pack every .spv file under the given folder")
	list            = flag.String("l", "", "List the contents of the given pack")
	extract         = flag.String("e", "", "Extract every blob of the given pack into the working directory")
	dstFile         = flag.String("f", "out.gsp", "Destination file")
)

func main() {
	var opMade bool
	flag.Parse()

	if *pack != "" {
		opMade = true
		if err := packShaders(); err != nil {
			log.Fatal(err)
		}
	}

	if *list != "" {
		opMade = true
		if err := listShaders(); err != nil {
			log.Fatal(err)
		}
	}

	if *extract != "" {
		opMade = true
		if err := extractShaders(); err != nil {
			log.Fatal(err)
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func packShaders() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var shadersToPack []string
	if err := filepath.Walk(*pack, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".spv" {
			return nil
		}
		shadersToPack = append(shadersToPack, path)
		return nil
	}); err != nil {
		return err
	}
	if len(shadersToPack) == 0 {
		return errors.New("no .spv files found")
	}

	packAuthor := *author
	if packAuthor == "" {
		packAuthor = currentUserName
	}

	builder := shaderpack.NewBuilder(shaderpack.Header{
		Author:  packAuthor,
		Version: *version,
	})

	for _, stp := range shadersToPack {
		data, err := ioutil.ReadFile(stp)
		if err != nil {
			return err
		}

		// Shader modules resolve "name.vert", not "name.vert.spv"
		label := filepath.Base(stp)
		label = label[:len(label)-len(".spv")]

		if err := builder.Add(label, data); err != nil {
			return err
		}
		log.WithField("label", label).Info("packed")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, err := builder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithField("bytes", written).Infof("wrote %s", *dstFile)
	return nil
}

func listShaders() error {
	archive, err := shaderpack.Open(*list)
	if err != nil {
		return err
	}
	defer archive.Close()

	header := archive.Header()
	fmt.Printf("author: %s, version: %d\n", header.Author, header.Version)
	for _, entry := range header.Index {
		fmt.Printf("%s\t%d bytes (%d compressed)\n", entry.Label, entry.Size, entry.CompressedSize)
	}
	return nil
}

func extractShaders() error {
	archive, err := shaderpack.Open(*extract)
	if err != nil {
		return err
	}
	defer archive.Close()

	for _, label := range archive.Labels() {
		data, err := archive.Load(label)
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(label+".spv", data, 0644); err != nil {
			return err
		}
		log.WithField("label", label).Info("extracted")
	}
	return nil
}
