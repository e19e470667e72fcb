package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baram-io/baram/pkg/workspace"
)

func newDomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Manage Studio domains",
	}

	cmd.AddCommand(newDomainsListCommand())
	cmd.AddCommand(newDomainsCreateCommand())
	cmd.AddCommand(newDomainsDeleteCommand())

	return cmd
}

func newDomainsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List Studio domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			domains, err := rt.directory().ListDomains(cmd.Context())
			if err != nil {
				return err
			}

			return printResult(domains, func() {
				for _, d := range domains {
					fmt.Printf("%s\t%s\t%s\n", d.ID, d.Name, d.Status)
				}
			})
		},
	}
}

func newDomainsCreateCommand() *cobra.Command {
	var (
		name           string
		role           string
		vpcID          string
		subnets        []string
		securityGroups []string
		kmsKeyID       string
		vpcOnly        bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Studio domain",
		Example: `  baram domains create --name research \
    --role arn:aws:iam::123456789012:role/studio \
    --vpc-id vpc-0abc --subnets subnet-1,subnet-2 --vpc-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			arn, err := rt.mutator().CreateDomain(cmd.Context(), workspace.DomainSpec{
				Name:           name,
				ExecutionRole:  role,
				VpcID:          vpcID,
				SubnetIDs:      subnets,
				SecurityGroups: securityGroups,
				EfsKmsKeyID:    kmsKeyID,
				VpcOnly:        vpcOnly,
			})
			if err != nil {
				return err
			}

			return printResult(map[string]string{"arn": arn}, func() {
				fmt.Printf("domain %s created: %s\n", name, arn)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "domain name")
	cmd.Flags().StringVar(&role, "role", "", "default execution role ARN")
	cmd.Flags().StringVar(&vpcID, "vpc-id", "", "VPC the domain attaches to")
	cmd.Flags().StringSliceVar(&subnets, "subnets", nil, "subnet IDs")
	cmd.Flags().StringSliceVar(&securityGroups, "security-groups", nil, "security group IDs")
	cmd.Flags().StringVar(&kmsKeyID, "kms-key", "", "KMS key for the home EFS file system")
	cmd.Flags().BoolVar(&vpcOnly, "vpc-only", false, "restrict app network access to the VPC")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("vpc-id")
	_ = cmd.MarkFlagRequired("subnets")
	return cmd
}

func newDomainsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the configured domain and its home EFS file system",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("domain deletion discards the home EFS file system; pass --force to confirm")
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			if err := rt.mutator().DeleteDomain(cmd.Context()); err != nil {
				return err
			}

			return printResult(map[string]string{"domain_id": rt.cfg.DomainID, "status": "delete_issued"}, func() {
				fmt.Printf("domain %s delete issued\n", rt.cfg.DomainID)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	return cmd
}
