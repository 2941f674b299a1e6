// Command fat12img inspects and writes FAT12 floppy disk images: listing
// files, dumping a single entry's metadata and cluster chain, and adding a
// host file to an image.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/go-fat/fat12img/errors"
	"github.com/go-fat/fat12img/fat12"
)

const clusterNumsPerLine = 8

func main() {
	app := &cli.App{
		Name:      "fat12img",
		HideHelp:  true,
		Usage:     "inspect and write FAT12 disk images",
		ArgsUsage: " ",
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Printf("error: command %q not recognized\n", command)
			os.Exit(-1)
		},
		Action: func(c *cli.Context) error {
			printUsage(c.App.Name)
			os.Exit(-1)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list files on image",
				ArgsUsage: "<image>",
				Action:    runList,
			},
			{
				Name:      "detail",
				Usage:     "print one file's metadata and cluster chain",
				ArgsUsage: "<image> <file>",
				Action:    runDetail,
			},
			{
				Name:      "add",
				Usage:     "add a host file to an image",
				ArgsUsage: "<source> <image> [name-in-image]",
				Action:    runAdd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(-1)
	}
	os.Exit(0)
}

func printUsage(name string) {
	fmt.Printf("%s:\n", name)
	fmt.Println("\tls <image>: list files on image.")
	fmt.Println("\tdetail <image> <file>: print one file's metadata and cluster chain.")
	fmt.Println("\tadd <source> <image> [name-in-image]: add a host file to an image.")
}

func runList(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return errors.ErrUsage.WithMessage("expected image filename")
	}
	img, err := fat12.LoadImage(c.Args().Get(0))
	if err != nil {
		return err
	}

	fmt.Printf(" Volume %s\n", img.VolumeLabel())
	fmt.Printf(" Volume has %d bytes per sector\n\n", img.SectorSize())

	var fileCount, totalBytes uint64
	for _, entry := range img.ListEntries() {
		name, err := entry.Filename()
		if err != nil {
			name = "????????.???"
		}
		fmt.Printf("%d\t%d\t%d\t\t%s\n", entry.LastWriteDate, entry.LastWriteTime, entry.FileSize, name)
		fileCount++
		totalBytes += uint64(entry.FileSize)
	}
	fmt.Printf("\t%d File(s)\t\t%d bytes\n", fileCount, totalBytes)
	return nil
}

func runDetail(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return errors.ErrUsage.WithMessage("expected <image> <file>")
	}
	img, err := fat12.LoadImage(c.Args().Get(0))
	if err != nil {
		return err
	}

	entry, err := img.GetFileEntry(c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(entry.String())

	clusterNum := entry.FirstLogicalCluster
	for {
		printed := 0
		for ; printed < clusterNumsPerLine; printed++ {
			next, err := img.GetFatEntry(uint32(clusterNum))
			if err != nil {
				return err
			}
			fmt.Printf("%#x\t", clusterNum)

			if !fat12.IsValidForwardLink(next) {
				fmt.Printf("\n%#x", next)
				return nil
			}
			clusterNum = next
		}
		fmt.Println()
	}
}

func runAdd(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return errors.ErrUsage.WithMessage("expected <source> <image> [name-in-image]")
	}
	sourcePath := c.Args().Get(0)
	imagePath := c.Args().Get(1)
	targetName := sourcePath
	if c.Args().Len() > 2 {
		targetName = c.Args().Get(2)
	}

	img, err := fat12.LoadImage(imagePath)
	if err != nil {
		return err
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return errors.ErrIO.Wrap(err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.ErrIO.Wrap(err)
	}

	if err := fat12.AddFile(img, source, info.Size(), targetName); err != nil {
		return err
	}
	return img.Save(imagePath)
}
